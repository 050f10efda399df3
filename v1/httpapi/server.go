package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/chemsource/sourcing/v1/buylist"
	"github.com/chemsource/sourcing/v1/sourcing"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// Params groups the dependencies of the HTTP server.
type Params struct {
	fx.In

	Config   Config
	Sourcing *sourcing.Service
	BuyLists *buylist.Service
	Logger   Logger  `optional:"true"`
	Metrics  Metrics `optional:"true"`
}

// Server is the HTTP API of the marketplace records.
type Server struct {
	cfg    Config
	engine *gin.Engine
	srv    *http.Server
	log    Logger
}

// NewServer builds the router. It does not listen until Start or Serve.
func NewServer(p Params) *Server {
	cfg := p.Config
	defaults := DefaultConfig()
	if cfg.Address == "" {
		cfg.Address = defaults.Address
	}
	if cfg.Mode == "" {
		cfg.Mode = defaults.Mode
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	log := p.Logger
	if log == nil {
		log = nopLogger{}
	}

	gin.SetMode(cfg.Mode)
	registerValidators()

	engine := gin.New()
	engine.Use(recovery(log), requestLogger(log))
	if p.Metrics != nil {
		engine.Use(requestMetrics(p.Metrics))
		engine.GET("/metrics", gin.WrapH(p.Metrics.Handler()))
	}
	if cfg.RequestTimeout > 0 {
		engine.Use(requestTimeout(cfg.RequestTimeout))
	}

	h := &handlers{sourcing: p.Sourcing, buyLists: p.BuyLists}
	engine.GET("/healthz", h.health)

	api := engine.Group("/api/v1")
	{
		api.POST("/profiles", h.ensureProfile)
		api.GET("/profiles", h.listProfiles)

		api.POST("/sell-products", h.addProduct)
		api.GET("/sell-products", h.listProducts)
		api.GET("/sell-products/:productId", h.getProduct)
		api.PUT("/sell-products/:productId", h.updateProduct)
		api.DELETE("/sell-products/:productId", h.deleteProduct)

		api.GET("/buy-list", h.getBuyList)
		api.POST("/buy-products", h.addBuyItem)
		api.DELETE("/buy-products", h.removeBuyItem)
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Response{Error: &ErrorBody{Code: CodeNotFound, Message: "route not found"}})
	})

	return &Server{
		cfg:    cfg,
		engine: engine,
		log:    log,
		srv: &http.Server{
			Addr:         cfg.Address,
			Handler:      engine,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve accepts connections on l until Shutdown is called.
func (s *Server) Serve(l net.Listener) error {
	s.log.Info("http server listening", nil, map[string]interface{}{"address": l.Addr().String()})
	if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on the configured address and serves until
// Shutdown is called.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	s.log.Info("shutting down http server", nil)
	return s.srv.Shutdown(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(string, error, ...map[string]interface{})  {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
func (nopLogger) Error(string, error, ...map[string]interface{}) {}
