package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/bitminesocial/mining-service/internal/config"
	"github.com/bitminesocial/mining-service/internal/handler"
	"github.com/bitminesocial/mining-service/internal/repository"
	"github.com/bitminesocial/mining-service/internal/service"
	"github.com/bitminesocial/mining-service/internal/store"
	"github.com/bitminesocial/mining-service/internal/utils"
	"github.com/bitminesocial/mining-service/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra     Infrastructure
	config    *config.Config
	router    *gin.Engine
	server    *http.Server
	simulator *service.Simulator
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	blacklistService := service.NewTokenBlacklistService(infra.Redis())
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	profileStore := store.NewRedisStore(infra.Redis())

	sessionService := service.NewSessionService(
		profileStore,
		repos.User,
		repos.Token,
		jwtManager,
		blacklistService,
		infra.Metrics(),
		infra.Logger(),
		service.SessionConfig{
			LoginDelay:           cfg.Session.LoginDelay,
			ClearDepositOnLogout: cfg.Session.ClearDepositOnLogout,
			BCryptCost:           cfg.Security.BCryptCost,
			RefreshTokenExpiry:   cfg.JWT.RefreshTokenExpiry,
		},
	)

	depositService := service.NewDepositService(
		profileStore,
		sessionService,
		repos.Activation,
		infra.Metrics(),
		infra.Logger(),
		service.DepositConfig{
			LicenseKey:         cfg.Deposit.LicenseKey,
			WalletAddress:      cfg.Deposit.WalletAddress,
			ExchangePartnerURL: cfg.Deposit.ExchangePartnerURL,
			ConfirmDelay:       cfg.Deposit.ConfirmDelay,
		},
	)

	simulator := service.NewSimulator(
		service.SimulatorConfig{
			TickInterval: cfg.Mining.TickInterval,
			IdleTimeout:  cfg.Mining.IdleTimeout,
		},
		infra.Metrics(),
		infra.Logger(),
	)

	// Every confirmed activation or upgrade re-bases the profile's accrual
	depositService.OnActivated(simulator.Reset)

	liveFeed := service.NewLiveFeed(
		service.LiveFeedConfig{
			TickInterval:      cfg.Live.TickInterval,
			StartBalanceUsd:   cfg.Live.StartBalanceUsd,
			CeilingBalanceUsd: cfg.Live.CeilingBalanceUsd,
			StartBalanceBtc:   cfg.Live.StartBalanceBtc,
			CeilingBalanceBtc: cfg.Live.CeilingBalanceBtc,
			BaseHashrateThs:   cfg.Live.BaseHashrateThs,
		},
		infra.Metrics(),
		infra.Logger(),
	)

	sessionHandler := handler.NewSessionHandler(sessionService)
	navigationHandler := handler.NewNavigationHandler(sessionService)
	depositHandler := handler.NewDepositHandler(depositService, cfg.Deposit.WalletAddress, cfg.Deposit.ExchangePartnerURL)
	dashboardHandler := handler.NewDashboardHandler(sessionService, depositService, simulator)
	liveHandler := handler.NewLiveHandler(liveFeed, infra.Logger())

	router := gin.Default()
	router.Use(otelgin.Middleware("mining-service"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, routeHandlers{
		session:    sessionHandler,
		navigation: navigationHandler,
		deposit:    depositHandler,
		dashboard:  dashboardHandler,
		live:       liveHandler,
	}, sessionService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &App{
		infra:     infra,
		config:    cfg,
		router:    router,
		server:    srv,
		simulator: simulator,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

type routeHandlers struct {
	session    *handler.SessionHandler
	navigation *handler.NavigationHandler
	deposit    *handler.DepositHandler
	dashboard  *handler.DashboardHandler
	live       *handler.LiveHandler
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	h routeHandlers,
	sessionService service.SessionService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow, handler.IPBasedKey("login")),
				h.session.Login,
			)
			auth.POST("/refresh", h.session.Refresh)
			auth.POST("/logout", handler.AuthMiddleware(sessionService), h.session.Logout)
			auth.GET("/me", handler.AuthMiddleware(sessionService), h.session.GetMe)
		}

		api.POST("/navigate", handler.OptionalAuthMiddleware(sessionService), h.navigation.Navigate)

		deposit := api.Group("/deposit", handler.AuthMiddleware(sessionService))
		{
			deposit.GET("", h.deposit.GetFlow)
			deposit.POST("/amount", h.deposit.SelectAmount)
			deposit.POST("/sent", h.deposit.ConfirmSent)
			deposit.POST("/license", h.deposit.VerifyLicense)
			deposit.GET("/status", h.deposit.Status)
			deposit.POST("/reset", h.deposit.Reset)
		}

		dashboard := api.Group("/dashboard", handler.AuthMiddleware(sessionService))
		{
			dashboard.GET("/stats", h.dashboard.Stats)
			dashboard.POST("/withdraw", h.dashboard.Withdraw)
		}

		api.GET("/demo/stats", h.dashboard.DemoStats)
		api.GET("/live", h.live.Stream)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	a.simulator.StopAll()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
