package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"clientflow/internal/api/handlers"
	"clientflow/internal/app"
	"clientflow/internal/auth"
	"clientflow/internal/config"
	"clientflow/internal/logger"
	"clientflow/internal/ratelimit"
	"clientflow/internal/repository/postgres"
	"clientflow/internal/service/llm"
)

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	appConfig, err := config.LoadConfig()
	if err != nil {
		logger.Log.WithError(err).Fatal("Invalid configuration")
	}

	// NewPostgresDB runs migrations as part of setup.
	database, err := postgres.NewPostgresDB(appConfig.Database)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close()

	cfg := app.NewConfig(database, appConfig)

	var limiterStore ratelimit.Store
	if appConfig.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     appConfig.Redis.Addr,
			Password: appConfig.Redis.Password,
			DB:       appConfig.Redis.DB,
		})
		limiterStore = ratelimit.NewRedisStore(client)
		logger.Log.WithField("addr", appConfig.Redis.Addr).Info("Rate limiting backed by Redis")
	} else {
		limiterStore = ratelimit.NewMemoryStore()
		logger.Log.Info("Rate limiting backed by in-process store")
	}
	limiter := ratelimit.NewLimiter(limiterStore)

	authService := auth.NewService(database, appConfig.Auth)
	provider := llm.NewOpenRouterProvider(&appConfig.LLM)

	generateHandlers := handlers.NewGenerateHandlers(cfg, provider)
	historyHandlers := handlers.NewHistoryHandlers(cfg)
	clientHandlers := handlers.NewClientHandlers(cfg)
	quotaHandlers := handlers.NewQuotaHandlers(cfg)

	mux := http.NewServeMux()

	corsHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.WriteHeader(http.StatusOK)
	}

	protect := func(preset ratelimit.Preset, h http.HandlerFunc) http.HandlerFunc {
		return enableCORS(limiter.Middleware(preset, authService.Middleware(h)))
	}

	// Public routes
	mux.HandleFunc("POST /api/login", enableCORS(limiter.Middleware(ratelimit.Standard, authService.LoginHandler)))
	mux.HandleFunc("OPTIONS /api/login", corsHandler)
	mux.HandleFunc("POST /api/register", enableCORS(limiter.Middleware(ratelimit.Standard, authService.RegisterHandler)))
	mux.HandleFunc("OPTIONS /api/register", corsHandler)
	mux.HandleFunc("GET /api/health", enableCORS(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))
	mux.HandleFunc("OPTIONS /api/health", corsHandler)

	// Generation gets the strict preset; it fans out to the model provider.
	mux.HandleFunc("POST /api/responses/generate", protect(ratelimit.Strict, generateHandlers.GenerateStreamHandler))
	mux.HandleFunc("OPTIONS /api/responses/generate", corsHandler)

	mux.HandleFunc("GET /api/history", protect(ratelimit.Standard, historyHandlers.ListHistoryHandler))
	mux.HandleFunc("OPTIONS /api/history", corsHandler)
	mux.HandleFunc("GET /api/history/{id}", protect(ratelimit.Standard, historyHandlers.GetHistoryHandler))
	mux.HandleFunc("DELETE /api/history/{id}", protect(ratelimit.Standard, historyHandlers.DeleteHistoryHandler))
	mux.HandleFunc("OPTIONS /api/history/{id}", corsHandler)

	mux.HandleFunc("POST /api/clients", protect(ratelimit.Standard, clientHandlers.CreateClientHandler))
	mux.HandleFunc("GET /api/clients", protect(ratelimit.Standard, clientHandlers.ListClientsHandler))
	mux.HandleFunc("OPTIONS /api/clients", corsHandler)
	mux.HandleFunc("GET /api/clients/{id}", protect(ratelimit.Standard, clientHandlers.GetClientHandler))
	mux.HandleFunc("DELETE /api/clients/{id}", protect(ratelimit.Standard, clientHandlers.DeleteClientHandler))
	mux.HandleFunc("OPTIONS /api/clients/{id}", corsHandler)

	mux.HandleFunc("GET /api/quota", protect(ratelimit.Relaxed, quotaHandlers.GetQuotaHandler))
	mux.HandleFunc("OPTIONS /api/quota", corsHandler)

	port := appConfig.Server.Port
	logger.Log.WithField("port", port).Info("Server starting")

	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logger.Log.WithError(err).Fatal("Server failed to start")
	}
}
