package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopkpi/shopkpi/internal/auth"
	authdomain "github.com/shopkpi/shopkpi/internal/auth/domain"
	"github.com/shopkpi/shopkpi/internal/auth/session"
	"github.com/shopkpi/shopkpi/internal/billing"
	billingdomain "github.com/shopkpi/shopkpi/internal/billing/domain"
	"github.com/shopkpi/shopkpi/internal/config"
	"github.com/shopkpi/shopkpi/internal/dashboard"
	dashboarddomain "github.com/shopkpi/shopkpi/internal/dashboard/domain"
	"github.com/shopkpi/shopkpi/internal/report"
	reportdomain "github.com/shopkpi/shopkpi/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	session.Module,
	report.Module,
	dashboard.Module,
	billing.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	authsvc      authdomain.Service
	sessions     *session.Manager
	reportSvc    reportdomain.Service
	dashboardSvc dashboarddomain.Service
	billingSvc   billingdomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Authsvc      authdomain.Service
	Sessions     *session.Manager
	ReportSvc    reportdomain.Service
	DashboardSvc dashboarddomain.Service
	BillingSvc   billingdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		authsvc:      p.Authsvc,
		sessions:     p.Sessions,
		reportSvc:    p.ReportSvc,
		dashboardSvc: p.DashboardSvc,
		billingSvc:   p.BillingSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/users", s.AuthRequired(), s.RequireAdmin(), s.ListUsers)

	// -------- Reports --------
	api.POST("/reports", s.AuthRequired(), s.SubscriptionRequired(), s.CreateReport)
	api.GET("/reports", s.AuthRequired(), s.ListReports)

	// -------- Dashboard --------
	api.GET("/dashboard", s.AuthRequired(), s.SubscriptionRequired(), s.GetDashboard)

	// -------- Billing --------
	api.POST("/billing/checkout", s.AuthRequired(), s.CreateCheckout)
	api.GET("/billing/subscription", s.AuthRequired(), s.GetSubscription)

	// Raw-body endpoint, authenticated by signature instead of session.
	api.POST("/payments/webhooks/stripe", s.HandleStripeWebhook)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.POST("/purge-cache", s.AdminKeyRequired(), s.PurgeCache)
}
