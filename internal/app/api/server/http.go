package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/billhound/billhound/docs"
	"github.com/billhound/billhound/internal/app/api/handlers"
	mw "github.com/billhound/billhound/internal/app/api/middleware"
	"github.com/billhound/billhound/internal/app/service/billsvc"
	"github.com/billhound/billhound/internal/app/service/dedupe"
	"github.com/billhound/billhound/internal/app/service/ingest"
	"github.com/billhound/billhound/internal/app/service/prefs"
	"github.com/billhound/billhound/internal/app/service/reminder"
	"github.com/billhound/billhound/internal/app/service/statistics"
	subsvc "github.com/billhound/billhound/internal/app/service/subscription"
	"github.com/billhound/billhound/internal/app/service/webhooklog"
	"github.com/billhound/billhound/internal/platform/gmailapi"
	"github.com/billhound/billhound/internal/platform/stripeapi"
	cfgpkg "github.com/billhound/billhound/pkg/config"
	metrics "github.com/billhound/billhound/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Log      *zap.SugaredLogger
	Cfg      *cfgpkg.Config
	Bills    *billsvc.Service
	Prefs    *prefs.Service
	Ingest   *ingest.Service
	Dedupe   *dedupe.Service
	Reminder *reminder.Service
	Sub      *subsvc.Service
	Stats    *statistics.Service
	EventLog *webhooklog.Service
	Stripe   *stripeapi.Client
	Gmail    *gmailapi.Client
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	// Prometheus metrics
	if d.Cfg != nil && d.Cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: d.Log,
		})
		p.SetListenAddress(d.Cfg.MetricsAddr)
		p.Use(r)

		d.Log.Infow("metrics started", "addr", d.Cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Stripe webhook: unauthenticated, signature-verified inside the handler.
	webhooks := r.Group("/api/v1")
	webhooks.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterWebhookRoutes(webhooks, d.Stripe, d.Sub, d.EventLog)

	// Scheduler-only group guarded by the shared cron key.
	cron := r.Group("/internal")
	cron.Use(mw.CronKeyMiddleware(d.Cfg), mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterCronRoutes(cron, d.Reminder)

	// Authenticated API surface.
	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.AuthMiddleware(d.Cfg), mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterBillRoutes(apiV1, d.Bills, d.Dedupe)
	handlers.RegisterPreferenceRoutes(apiV1, d.Prefs)
	handlers.RegisterSyncRoutes(apiV1, d.Ingest)
	handlers.RegisterReminderRoutes(apiV1, d.Reminder)
	handlers.RegisterBillingRoutes(apiV1, d.Sub)
	handlers.RegisterGoogleAuthRoutes(apiV1, d.Gmail, d.Prefs)
	handlers.RegisterStatisticsRoutes(apiV1, d.Stats)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
