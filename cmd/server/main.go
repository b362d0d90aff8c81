package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/finsight-app/backend/internal/api/handlers"
	"github.com/finsight-app/backend/internal/api/middleware"
	"github.com/finsight-app/backend/internal/auth"
	"github.com/finsight-app/backend/internal/config"
	"github.com/finsight-app/backend/internal/logger"
	"github.com/finsight-app/backend/internal/service"
	"github.com/finsight-app/backend/internal/store"
)

func main() {
	log := logger.New("finsight-backend")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := context.Background()

	useMemoryStore := os.Getenv("USE_MEMORY_STORE") == "true" || cfg.IsLocal()

	var st store.Store
	var firebaseAuth *auth.FirebaseAuth
	var fcmApp *firebase.App

	if useMemoryStore {
		log.Info().Msg("using in-memory store for local development")
		st = store.NewMemoryStore()
		// Mock authentication keeps the local loop free of Firebase setup.
		firebaseAuth = nil
	} else {
		projectID := cfg.Firestore.ProjectID
		if projectID == "" {
			log.Fatal().Msg("GOOGLE_CLOUD_PROJECT is required outside local mode")
		}

		firestoreClient, err := firestore.NewClient(ctx, projectID)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create Firestore client")
		}
		defer firestoreClient.Close()
		st = store.NewFirestoreStore(firestoreClient)

		if cfg.Auth.SkipAuth {
			log.Warn().Msg("SKIP_AUTH enabled, using mock authentication with Firestore (for seeding and testing only)")
		} else {
			firebaseAuth, err = auth.NewFirebaseAuth(ctx)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to initialize Firebase Auth")
			}
		}

		fcmApp, err = firebase.NewApp(ctx, nil)
		if err != nil {
			log.Warn().Err(err).Msg("push notifications disabled: Firebase app init failed")
		}
	}

	svc := service.NewFinanceService(st, cfg.Analytics, log)
	if fcmApp != nil {
		fcmClient, err := fcmApp.Messaging(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("push notifications disabled: messaging client init failed")
		} else {
			svc.SetFCMClient(fcmClient)
		}
	}

	handler := handlers.NewFinanceHandler(svc, cfg.Auth.SchedulerSecret, log)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	chain := buildMiddleware(mux, firebaseAuth, log)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: h2c.NewHandler(chain, &http2.Server{}),
	}

	log.Info().Str("port", cfg.Server.Port).Str("environment", cfg.Server.Environment).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// buildMiddleware assembles the request pipeline: request IDs, panic
// recovery, access logging, CORS, then authentication.
func buildMiddleware(mux *http.ServeMux, firebaseAuth *auth.FirebaseAuth, log zerolog.Logger) http.Handler {
	var handler http.Handler = mux

	if firebaseAuth != nil {
		handler = auth.Middleware(firebaseAuth, log)(handler)
	} else {
		handler = auth.LocalDevMiddleware()(handler)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"https://finsight.app",
			"https://www.finsight.app",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"User-Agent",
			"X-Request-ID",
			"X-Scheduler-Secret",
			"X-Debug-Impersonate-User",
		},
		AllowCredentials: true,
	})
	handler = c.Handler(handler)

	handler = middleware.Logger(log)(handler)
	handler = middleware.Recovery(log)(handler)
	handler = middleware.RequestID(handler)
	return handler
}
