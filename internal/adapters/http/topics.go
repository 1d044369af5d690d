package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/Boxcall/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type createTopicRequest struct {
	Channel string `json:"channel"`
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

type topicAuthor struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type topicChannel struct {
	CID   string   `json:"cid"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

type topicResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	ID        string       `json:"id"`
	Author    topicAuthor  `json:"author"`
	Channel   topicChannel `json:"channel"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	CreatedAt int64        `json:"created_at"`
}

func newTopicResponse(msg string, t store.Topic, author store.User) topicResponse {
	return topicResponse{
		Success: true,
		Message: msg,
		ID:      t.ID,
		Author: topicAuthor{
			UID:   author.ID,
			Name:  author.Name,
			Email: author.Email,
		},
		Channel: topicChannel{
			CID:   t.Channel,
			Title: "unset",
			Tags:  []string{},
		},
		Title:     t.Title,
		Content:   t.Content,
		CreatedAt: t.CreatedAt.UnixMilli(),
	}
}

func (h *handlers) createTopic(c *gin.Context) {
	var req createTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, badRequest("Missing title"))
		return
	}
	claims := claimsOf(c)
	author, err := h.store.UserByID(c.Request.Context(), claims.OID)
	if err != nil {
		fail(c, err)
		return
	}
	t, err := h.store.NewTopic(c.Request.Context(), author.ID, req.Channel, req.Title, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	log.Info().Str("module", "adapters.http").Str("tid", t.ID).Str("uid", author.ID).Msg("topic created")
	c.JSON(http.StatusCreated, newTopicResponse("Topic created", t, author))
}

func (h *handlers) topic(c *gin.Context) {
	ctx := c.Request.Context()
	t, err := h.store.Topic(ctx, c.Param("tid"))
	if err != nil {
		fail(c, notFound("Topic not found", err))
		return
	}
	author, err := h.store.UserByID(ctx, t.AuthorID)
	if err != nil {
		fail(c, notFound("Author not found", err))
		return
	}
	c.JSON(http.StatusOK, newTopicResponse("Topic queried", t, author))
}

func (h *handlers) deleteTopic(c *gin.Context) {
	claims := claimsOf(c)
	if err := h.store.DeleteTopic(c.Request.Context(), c.Param("tid"), claims.OID); err != nil {
		fail(c, notFound("Topic not found", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Topic deleted"})
}

func notFound(msg string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &apiError{status: http.StatusNotFound, message: msg}
	}
	return err
}
