package http

import (
	"context"

	"github.com/dkeye/Boxcall/internal/adapters/rtc"
	"github.com/dkeye/Boxcall/internal/adapters/signal"
	"github.com/dkeye/Boxcall/internal/app/orch"
	"github.com/dkeye/Boxcall/internal/auth"
	"github.com/dkeye/Boxcall/internal/config"
	"github.com/dkeye/Boxcall/internal/store"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type handlers struct {
	orch   *orch.Orchestrator
	store  store.Store
	tokens *auth.Issuer
	ice    rtc.ClientConfig
}

// SetupRouter wires every HTTP route. st may be nil, which disables the
// account and topic routes.
func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, st store.Store) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	sessionStore := cookie.NewStore([]byte(cfg.Secret))
	sessionStore.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions("BoxcallSessions", sessionStore))
	r.Use(ClientTokenMiddleware())
	r.Use(CORSMiddleware(cfg.AllowedOrigins))

	h := &handlers{
		orch:   o,
		store:  st,
		tokens: auth.NewIssuer(cfg.Secret, cfg.TokenTTL),
		ice:    rtc.NewClientConfig(rtc.ICEConfig(cfg.ICEServers)),
	}

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(o.Metrics.Handler()))

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Bool("store", st != nil).Msg("router setup")

	api := r.Group("/api")
	api.GET("/users", h.users)
	api.GET("/devices", h.devices)
	api.GET("/rooms", h.rooms)
	api.GET("/ice", h.iceServers)

	ctrl := signal.NewSignalWSController(o, signal.Options{
		ReadLimit:       cfg.ReadLimit,
		PingPeriod:      cfg.PingPeriod,
		SendBuffer:      cfg.SendBuffer,
		EventsPerSecond: cfg.RateLimit.EventsPerSecond,
		Burst:           cfg.RateLimit.Burst,
		AllowedOrigins:  cfg.AllowedOrigins,
	})
	api.GET("/ws/signal", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client_token", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	if st != nil {
		r.POST("/reg", h.register)
		r.POST("/auth", h.authorize)

		topics := api.Group("/topics", BearerMiddleware(h.tokens))
		topics.POST("", h.createTopic)
		topics.GET("/:tid", h.topic)
		topics.DELETE("/:tid", h.deleteTopic)
	}

	return r
}
