package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/Boxcall/internal/auth"
	"github.com/dkeye/Boxcall/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authorizeRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func newTokenResponse(token string) tokenResponse {
	return tokenResponse{
		Success:     true,
		Message:     "Token generated",
		AccessToken: token,
		TokenType:   "Bearer",
	}
}

func (h *handlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, badRequest("Missing credentials"))
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	u, err := h.store.AddUser(c.Request.Context(), req.Username, req.Email, hash)
	if err != nil {
		fail(c, err)
		return
	}
	log.Info().Str("module", "adapters.http").Str("user", u.Name).Str("uid", u.ID).Msg("registered")
	h.issue(c, u)
}

func (h *handlers) authorize(c *gin.Context) {
	var req authorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, badRequest("Missing credentials"))
		return
	}
	u, err := h.store.UserByName(c.Request.Context(), req.Username)
	if errors.Is(err, store.ErrNotFound) {
		fail(c, auth.ErrInvalidCredentials)
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		fail(c, err)
		return
	}
	h.issue(c, u)
}

func (h *handlers) issue(c *gin.Context, u store.User) {
	token, err := h.tokens.Issue(u.Name, u.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newTokenResponse(token))
}
