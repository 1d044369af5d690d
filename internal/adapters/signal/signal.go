package signal

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/Boxcall/internal/app/orch"
	"github.com/dkeye/Boxcall/internal/core"
	"github.com/dkeye/Boxcall/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"golang.org/x/time/rate"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Options tunes the websocket transport.
type Options struct {
	ReadLimit       int64
	PingPeriod      time.Duration
	WriteWait       time.Duration
	SendBuffer      int
	EventsPerSecond float64
	Burst           int
	AllowedOrigins  []string
}

func (o Options) withDefaults() Options {
	if o.ReadLimit <= 0 {
		o.ReadLimit = 64 << 10
	}
	if o.PingPeriod <= 0 {
		o.PingPeriod = 25 * time.Second
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 5 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	return o
}

func (o Options) pongWait() time.Duration {
	return o.PingPeriod * 10 / 9
}

type SignalWSController struct {
	Orch     *orch.Orchestrator
	opts     Options
	upgrader websocket.Upgrader
	routes   map[string]handlerFunc
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	opts = opts.withDefaults()
	ctl := &SignalWSController{
		Orch: o,
		opts: opts,
	}
	ctl.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return OriginAllowed(r.Header.Get("Origin"), opts.AllowedOrigins)
		},
	}
	ctl.routes = ctl.newRouter()
	return ctl
}

// OriginAllowed accepts an empty allow list, requests without Origin,
// and hosts equal to or under one of the allowed domains.
func OriginAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 || origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	for _, a := range allowed {
		a = strings.TrimPrefix(strings.ToLower(a), ".")
		if a == "*" || host == a || strings.HasSuffix(host, "."+a) {
			return true
		}
	}
	return false
}

type WsSignalConn struct {
	id      domain.ConnID
	conn    *websocket.Conn
	send    chan core.Frame
	limiter *rate.Limiter
	tasks   conc.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) ID() domain.ConnID { return c.id }

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		id:      domain.NewConnID(),
		conn:    ws,
		send:    make(chan core.Frame, ctl.opts.SendBuffer),
		limiter: newLimiter(ctl.opts.EventsPerSecond, ctl.opts.Burst),
	}
	log.Info().Str("module", "signal").Str("conn", string(conn.id)).Str("client_token", token).
		Str("remote", c.ClientIP()).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.Bind(conn, token, cancel)
	ctl.Orch.Metrics.ConnOpened()
	ctl.Orch.Emit(conn.id, core.EventWhoAmI, ctl.Orch.WhoAmI(conn.id))

	go ctl.serve(ctx, cancel, conn)
}

// serve owns the pumps of one connection and runs the disconnect path once both stop.
func (ctl *SignalWSController) serve(ctx context.Context, cancel context.CancelFunc, c *WsSignalConn) {
	reason := "closed"
	c.tasks.Go(func() { ctl.writePump(ctx, c) })
	c.tasks.Go(func() {
		defer cancel()
		if err := ctl.readPump(ctx, c); err != nil {
			reason = err.Error()
		}
	})
	if r := c.tasks.WaitAndRecover(); r != nil {
		log.Error().Str("module", "signal").Str("conn", string(c.id)).Str("panic", r.String()).Msg("connection panicked")
		reason = "panic"
	}
	cancel()
	c.Close()
	ctl.Orch.Disconnect(c.id, reason)
	ctl.Orch.Metrics.ConnClosed()
}
