package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/algolovers/newsletter-console-services/api/handlers"
	"github.com/algolovers/newsletter-console-services/api/middleware"
	"github.com/algolovers/newsletter-console-services/api/services"
	docs "github.com/algolovers/newsletter-console-services/docs"
	"github.com/algolovers/newsletter-console-services/internal/appconfig"
	"github.com/algolovers/newsletter-console-services/internal/authn"
	"github.com/algolovers/newsletter-console-services/internal/cache"
	"github.com/algolovers/newsletter-console-services/internal/events"
	"github.com/algolovers/newsletter-console-services/internal/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	shutdownTimeout    = 15 * time.Second
	limiterCleanup     = time.Minute
	limiterIdleTimeout = 10 * time.Minute
)

// @title Newsletter Console Services API
// @version v1
// @description This is the API for managing newsletter groups, members and questions.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for handling API requests",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config, initialize the database and set up logging
		commonSetUp()
		defer newsletterDB.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		instanceID := uuid.NewString()
		logger := log.With().Str("instance", instanceID).Logger()

		jwtSvc, err := authn.NewJwtService(appCfg.JWT.Secret, appCfg.JWT.TokenTTL())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize JWT service")
		}

		groupCache, err := cache.New(appCfg.Cache)
		if err != nil {
			log.Fatal().Err(err).Str("backend", appCfg.Cache.Backend).Msg("Failed to initialize group cache")
		}
		defer groupCache.Close()

		// Initialize event publisher
		publisher, err := initializePublisher(appCfg.Pulsar, instanceID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event publisher")
		}
		defer publisher.Close()

		groups := services.NewGroupCacheService(newsletterDB, groupCache, publisher)

		if appCfg.Pulsar.URL != "" {
			consumer, err := events.NewEventConsumer(appCfg.Pulsar.URL, appCfg.Pulsar.Topic, instanceID)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to initialize event consumer")
			}
			defer consumer.Close()

			go func() {
				if err := consumer.Run(logger.WithContext(ctx), groups.HandleEvent); err != nil {
					logger.Error().Err(err).Msg("group event consumer stopped")
				}
			}()
		}

		service := &services.Service{
			Config: appCfg,
			DB:     newsletterDB,
			Groups: groups,
			Jwt:    jwtSvc,
		}

		limiter := middleware.NewRateLimiter(appCfg.RateLimit.RequestsPerSecond, appCfg.RateLimit.Burst)
		limiter.StartCleanup(ctx, limiterCleanup, limiterIdleTimeout)

		provider := authn.NewGoogleOAuth(appCfg.OAuth.ClientID, appCfg.OAuth.ClientSecret, appCfg.OAuth.RedirectURL)
		r := newRouter(service, provider, limiter)

		server := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("graceful shutdown failed")
			}
		}()

		log.Info().Msg(fmt.Sprintf("Server started at %s:%d", host, port))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("could not start server")
		}
		log.Info().Msg("Server stopped")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "0.0.0.0", "host to run the server on")
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to run the server on")
}

// initializePublisher connects to Pulsar, or returns a notifier that drops
// events when no broker is configured.
func initializePublisher(cfg appconfig.PulsarConfig, origin string) (events.Notifier, error) {
	if cfg.URL == "" {
		log.Warn().Msg("pulsar.url not set, group cache events are disabled")
		return events.NoopNotifier{}, nil
	}
	return events.NewEventPublisher(cfg.URL, cfg.Topic, origin)
}

func newRouter(service *services.Service, provider handlers.OAuthProvider, limiter *middleware.RateLimiter) *mux.Router {
	cfg := service.Config

	// Create routes
	r := mux.NewRouter()
	r.Use(middleware.WithLogger)
	r.Use(metrics.InstrumentHandler)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// Login routes
	r.Handle("/oauth2/authorization/google",
		limiter.Handler(handlers.OAuth2Authorization(service, provider))).Methods(http.MethodGet)
	r.Handle("/login/oauth2/code/google",
		limiter.Handler(handlers.OAuth2Callback(service, provider))).Methods(http.MethodGet)

	// Docs
	docs.SwaggerInfo.Host = cfg.Host
	docs.SwaggerInfo.BasePath = cfg.BasePath
	r.PathPrefix(cfg.DocsPath).Handler(httpSwagger.Handler(
		httpSwagger.URL(path.Join(cfg.DocsPath, "/doc.json")),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	)).Methods(http.MethodGet)

	// Register the routes
	api := r.PathPrefix(cfg.BasePath).Subrouter()

	// Apply the middleware to the API routes. Limiting comes first so rejected
	// requests are counted too.
	api.Use(limiter.HandlerWithKey(middleware.TokenSubjectKey(service.Jwt, cfg.JWT.CookieName)))
	api.Use(middleware.JWTMiddleware(service.Jwt, service.DB, cfg.JWT.CookieName))

	// Question routes
	api.HandleFunc("/questions/createOrUpdateQuestions", handlers.CreateOrUpdateQuestions(service)).Methods(http.MethodPost)
	api.HandleFunc("/questions/getQuestions", handlers.GetQuestions(service)).Methods(http.MethodPost)

	// Group routes
	api.HandleFunc("/groups/createGroup", handlers.CreateGroup(service)).Methods(http.MethodPost)
	api.HandleFunc("/groups/getGroup", handlers.GetGroup(service)).Methods(http.MethodPost)
	api.HandleFunc("/groups/deleteGroup", handlers.DeleteGroup(service)).Methods(http.MethodPost)
	api.HandleFunc("/groups/addMember", handlers.AddMember(service)).Methods(http.MethodPost)
	api.HandleFunc("/groups/removeMember", handlers.RemoveMember(service)).Methods(http.MethodPost)
	api.HandleFunc("/groups/setEditAccess", handlers.SetEditAccess(service)).Methods(http.MethodPost)

	// User routes
	api.HandleFunc("/user/authorizedUserDetails", handlers.AuthorizedUserDetails(service)).Methods(http.MethodGet)
	api.HandleFunc("/user/invalidateTokens", handlers.InvalidateTokens(service)).Methods(http.MethodPost)

	return r
}
