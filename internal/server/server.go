package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/keygate/internal/activation"
	"github.com/smallbiznis/keygate/internal/checkout"
	checkoutdomain "github.com/smallbiznis/keygate/internal/checkout/domain"
	"github.com/smallbiznis/keygate/internal/clock"
	"github.com/smallbiznis/keygate/internal/config"
	"github.com/smallbiznis/keygate/internal/customer"
	"github.com/smallbiznis/keygate/internal/license"
	licensedomain "github.com/smallbiznis/keygate/internal/license/domain"
	"github.com/smallbiznis/keygate/internal/observability"
	obsmetrics "github.com/smallbiznis/keygate/internal/observability/metrics"
	"github.com/smallbiznis/keygate/internal/providers/email"
	"github.com/smallbiznis/keygate/internal/ratelimit"
	"github.com/smallbiznis/keygate/internal/release"
	releasedomain "github.com/smallbiznis/keygate/internal/release/domain"
	"github.com/smallbiznis/keygate/internal/team"
	"github.com/smallbiznis/keygate/internal/webhookevent"
	webhookdomain "github.com/smallbiznis/keygate/internal/webhookevent/domain"
)

var Module = fx.Module("http.server",
	clock.Module,
	observability.Module,
	ratelimit.Module,
	email.Module,
	customer.Module,
	activation.Module,
	team.Module,
	license.Module,
	release.Module,
	checkout.Module,
	webhookevent.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, registry *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(log *zap.Logger, registry *prometheus.Registry) *gin.Engine {
	return NewEngine(log, registry)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
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
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	licenseSvc  licensedomain.Service
	checkoutSvc checkoutdomain.Service
	webhookSvc  webhookdomain.Service
	releaseSvc  releasedomain.Service
	metrics     *obsmetrics.Metrics
	limiter     ratelimit.Limiter
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	LicenseSvc  licensedomain.Service
	CheckoutSvc checkoutdomain.Service
	WebhookSvc  webhookdomain.Service
	ReleaseSvc  releasedomain.Service
	Metrics     *obsmetrics.Metrics `optional:"true"`
	Limiter     ratelimit.Limiter   `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		licenseSvc:  p.LicenseSvc,
		checkoutSvc: p.CheckoutSvc,
		webhookSvc:  p.WebhookSvc,
		releaseSvc:  p.ReleaseSvc,
		metrics:     p.Metrics,
		limiter:     p.Limiter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	// -------- License --------
	v1.POST("/license/activate", s.RateLimit(1, 30), s.ActivateLicense)
	v1.POST("/license/deactivate", s.RateLimit(1, 30), s.DeactivateLicense)

	// -------- Team --------
	v1.POST("/team/invite", s.InviteTeamMember)
	v1.POST("/team/remove", s.RemoveTeamMember)
	v1.POST("/team/members", s.ListTeamMembers)

	// -------- Checkout --------
	v1.POST("/checkout/pro", s.CreateProCheckout)
	v1.POST("/checkout/team", s.CreateTeamCheckout)

	// -------- Webhooks --------
	v1.POST("/webhooks/payments", s.RateLimit(5, 60), s.HandlePaymentWebhook)

	// -------- Releases --------
	v1.GET("/releases/latest", s.GetLatestRelease)
}
