package line

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/ideapartner/ideapartner/internal/config"
	"github.com/ideapartner/ideapartner/internal/core"
	"github.com/ideapartner/ideapartner/pkg/log"
)

const healthMode = "Speed King (1.5s Timeout) + Vision Ready"

type Dispatcher interface {
	Dispatch(ctx context.Context, ev core.Event, ch core.Channel) error
}

// Server serves the LINE webhook, a health probe and static files.
type Server struct {
	cfg        *config.ServerConfig
	secret     string
	plainText  bool
	messenger  Messenger
	dispatcher Dispatcher
	router     *gin.Engine

	mu     sync.Mutex
	server *http.Server
}

func NewServer(
	cfg *config.ServerConfig,
	lineCfg *config.LineConfig,
	appCfg *config.AppConfig,
	messenger Messenger,
	dispatcher Dispatcher,
) (*Server, error) {
	if err := os.MkdirAll(cfg.StaticDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create static dir: %w", err)
	}

	s := &Server{
		cfg:        cfg,
		secret:     lineCfg.ChannelSecret,
		plainText:  appCfg.ReplyPlainText,
		messenger:  messenger,
		dispatcher: dispatcher,
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.GET("/", s.health)
	router.POST("/callback", s.callback)
	router.Static("/static", cfg.StaticDir)
	s.router = router

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	s.mu.Lock()
	s.server = server
	s.mu.Unlock()

	log.FromCtx(ctx).Info().
		Str("addr", s.cfg.Addr).
		Str("webhook_url", s.cfg.WebhookURL()).
		Msg("starting LINE webhook server")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("webhook server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "Active", "mode": healthMode})
}

func (s *Server) callback(c *gin.Context) {
	// A reply must not be cut short when LINE drops the connection.
	ctx := context.WithoutCancel(c.Request.Context())
	logger := log.FromCtx(ctx)

	cb, err := webhook.ParseRequest(s.secret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			logger.Warn().Msg("rejected webhook with invalid signature")
			c.String(http.StatusBadRequest, "Invalid signature")
			return
		}
		logger.Warn().Err(err).Msg("rejected malformed webhook body")
		c.String(http.StatusBadRequest, "Bad request")
		return
	}

	for _, raw := range cb.Events {
		ev, replyToken, ok := toEvent(raw)
		if !ok {
			logger.Debug().Str("type", fmt.Sprintf("%T", raw)).Msg("skipping unsupported event")
			continue
		}

		evCtx := log.WithFields(ctx, "user_id", ev.UserID, "kind", string(ev.Kind))
		ch := &channel{messenger: s.messenger, replyToken: replyToken, plainText: s.plainText}
		if err := s.dispatcher.Dispatch(evCtx, ev, ch); err != nil {
			log.FromCtx(evCtx).Error().Err(err).Msg("failed to handle event")
		}
	}

	c.String(http.StatusOK, "OK")
}

// requestLogger tags each request with an id and logs it once it is served.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := uuid.NewString()

		ctx := log.WithFields(c.Request.Context(), "request_id", id)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", id)

		c.Next()

		log.FromCtx(ctx).Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
