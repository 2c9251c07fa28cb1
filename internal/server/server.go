package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"frachtrechner/internal/config"
	"frachtrechner/internal/server/handlers"
	"frachtrechner/internal/service/store"
	"frachtrechner/internal/service/tariff"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Server HTTP服务器
type Server struct {
	router   *gin.Engine
	store    *store.MemoryStore
	handlers *handlers.Handlers
	logger   *zap.Logger

	mu   sync.Mutex
	http *http.Server
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig, logger *zap.Logger) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sessions := store.NewMemoryStore(cfg.SessionTTL(), cfg.Session.MaxSessions)

	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	router.MaxMultipartMemory = cfg.MaxUploadBytes()
	router.SetHTMLTemplate(template.Must(
		template.New("").Funcs(templateFuncs).ParseFS(templateFiles, "templates/*.html"),
	))

	s := &Server{
		router:   router,
		store:    sessions,
		handlers: handlers.NewHandlers(sessions, cfg, logger),
		logger:   logger,
	}

	s.setupRoutes()

	return s
}

var templateFuncs = template.FuncMap{
	"money": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"legView": func(outcome tariff.LegOutcome, heading, totalLabel, currency string) legView {
		return legView{Outcome: outcome, Heading: heading, TotalLabel: totalLabel, Currency: currency}
	},
}

// legView 单段结果的渲染数据
type legView struct {
	Outcome    tariff.LegOutcome
	Heading    string
	TotalLabel string
	Currency   string
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	h := s.handlers

	// 页面
	s.router.GET("/", h.Index)
	s.router.POST("/upload", h.UploadForm)
	s.router.GET("/sessions/:id", h.SessionPage)
	s.router.POST("/sessions/:id", h.CalculateForm)
	s.router.POST("/sessions/:id/export", h.ExportForm)

	// JSON API
	api := s.router.Group("/api")
	{
		api.GET("/status", h.Status)
		api.POST("/upload", h.UploadFile)
		api.GET("/sessions/:id", h.GetSession)
		api.DELETE("/sessions/:id", h.DeleteSession)
		api.POST("/sessions/:id/calculate", h.Calculate)
		api.POST("/sessions/:id/export", h.Export)
	}
}

// requestLogger 使用 zap 记录每个请求
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}

// Handler 返回 HTTP 处理器（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，Shutdown 后返回 nil
func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.MemoryStore {
	return s.store
}
