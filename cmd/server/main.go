package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Stefhermann/GOpherARun/internal/auth"
	"github.com/Stefhermann/GOpherARun/internal/broker"
	"github.com/Stefhermann/GOpherARun/internal/config"
	"github.com/Stefhermann/GOpherARun/internal/database"
	"github.com/Stefhermann/GOpherARun/internal/handler"
	"github.com/Stefhermann/GOpherARun/internal/repository"
	"github.com/Stefhermann/GOpherARun/internal/repository/memory"
	"github.com/Stefhermann/GOpherARun/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// @title           GopherRun API
// @version         1.0
// @description     Friendships and event participation for the GopherRun running platform.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.ConfigureLogger(); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logger")
	}

	ctx := context.Background()

	st, closeStores, err := openStores(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open stores")
	}
	defer closeStores()

	provider, err := identityProvider(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize identity provider")
	}

	var publisher broker.Publisher = broker.NoopPublisher{}
	if cfg.NatsURL != "" {
		natsPublisher, err := broker.NewNatsPublisher(cfg.NatsURL)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to NATS")
		}
		publisher = natsPublisher
		logrus.Info("NATS JetStream connected")
	}
	defer publisher.Close()

	h := handler.New(
		service.NewFriendshipService(st.relations, st.profiles, publisher),
		service.NewEventService(st.events, publisher),
		service.NewDirectoryService(st.profiles),
	)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(h, provider)

	corsOpts := corsOptions(cfg.AllowedOrigins())
	if !corsOpts.AllowCredentials {
		logrus.Warn("CORS allows any origin; credentialed requests are disabled. Set CORS_ALLOWED_ORIGINS to enable them.")
	}
	c := cors.New(corsOpts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("Server is running on :%s", cfg.Port)
		logrus.Infof("Swagger UI is available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to serve")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit
	logrus.WithField("signal", sig.String()).Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Forced shutdown")
	}
}

type stores struct {
	relations repository.RelationshipRepository
	events    repository.EventRepository
	profiles  repository.ProfileRepository
}

func openStores(cfg *config.Config) (stores, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logrus.Warn("Using the in-memory store, data is lost on restart")
		m := memory.NewStore()
		return stores{relations: m, events: m, profiles: m}, func() {}, nil
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return stores{}, nil, err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return stores{}, nil, err
	}
	return stores{
		relations: repository.NewPostgresRelationshipRepository(db),
		events:    repository.NewPostgresEventRepository(db),
		profiles:  repository.NewPostgresProfileRepository(db),
	}, func() { database.Close(db) }, nil
}

func identityProvider(ctx context.Context, cfg *config.Config) (auth.IdentityProvider, error) {
	if cfg.AuthProvider == config.AuthProviderFirebase {
		return auth.NewFirebaseProvider(ctx, cfg.FirebaseCredentialsPath)
	}
	return auth.NewJWTProvider(cfg.JWTSecret), nil
}
