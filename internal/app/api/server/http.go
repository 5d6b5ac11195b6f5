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

	"github.com/amoraapp/ledger/docs"
	"github.com/amoraapp/ledger/internal/app/api/handlers"
	mw "github.com/amoraapp/ledger/internal/app/api/middleware"
	"github.com/amoraapp/ledger/internal/app/service/authevents"
	"github.com/amoraapp/ledger/internal/app/service/billing"
	"github.com/amoraapp/ledger/internal/app/service/credits"
	"github.com/amoraapp/ledger/internal/app/service/premium"
	"github.com/amoraapp/ledger/internal/app/service/profile"
	"github.com/amoraapp/ledger/internal/app/service/stats"
	wh "github.com/amoraapp/ledger/internal/app/service/webhook"
	cfgpkg "github.com/amoraapp/ledger/pkg/config"
	metrics "github.com/amoraapp/ledger/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Request logger & access log are attached per group in registerRoutes.
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Log        *zap.SugaredLogger
	Cfg        *cfgpkg.Config
	Webhook    *wh.Handler
	AuthEvents *authevents.Service
	Profiles   *profile.Service
	Billing    *billing.Service
	Credits    *credits.Service
	Premium    *premium.Service
	Stats      *stats.Service
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

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())

	handlers.RegisterWebhookRoutes(apiV1.Group("/webhook"), d.Webhook, d.AuthEvents)
	handlers.RegisterEntitlementRoutes(apiV1.Group("/entitlement"), d.Profiles, d.Billing, d.Credits)
	handlers.RegisterAdminRoutes(apiV1.Group("/admin"), d.Premium, d.Credits, d.Billing, d.Stats)
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
