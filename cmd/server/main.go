package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/AnshRaj112/mindhaven-backend/internal/config"
	"github.com/AnshRaj112/mindhaven-backend/internal/database"
	"github.com/AnshRaj112/mindhaven-backend/internal/handlers"
	"github.com/AnshRaj112/mindhaven-backend/internal/identity"
	"github.com/AnshRaj112/mindhaven-backend/internal/integrations/googlefit"
	"github.com/AnshRaj112/mindhaven-backend/internal/integrations/media"
	"github.com/AnshRaj112/mindhaven-backend/internal/integrations/newsletter"
	"github.com/AnshRaj112/mindhaven-backend/internal/logger"
	"github.com/AnshRaj112/mindhaven-backend/internal/metrics"
	"github.com/AnshRaj112/mindhaven-backend/internal/middleware"
	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/responder"
	"github.com/AnshRaj112/mindhaven-backend/internal/routes"
	"github.com/AnshRaj112/mindhaven-backend/internal/services"
	"github.com/AnshRaj112/mindhaven-backend/internal/store/mongostore"
	"github.com/AnshRaj112/mindhaven-backend/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	zl, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := database.Connect(cfg.MongoURI, cfg.MongoDatabase, zl); err != nil {
		zl.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = database.Disconnect() }()

	idxCtx, idxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(idxCtx, database.DB); err != nil {
		zl.Warn("failed to ensure MongoDB indexes", zap.Error(err))
	}
	idxCancel()

	var historyCache services.HistoryCache = services.NopHistoryCache{}
	if cfg.RedisEnabled() {
		if err := database.ConnectRedis(cfg.RedisURI, zl); err != nil {
			zl.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = database.DisconnectRedis() }()
		historyCache = services.NewRedisHistoryCache(database.RedisClient, zl)
	} else {
		zl.Warn("REDIS_URI not set; chat history cache and shared rate limiting disabled")
	}

	stores := mongostore.New(database.DB)

	keys := identity.NewCertKeySet(cfg.FirebaseCertsURL, zl)
	refreshCtx, refreshCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := keys.Refresh(refreshCtx); err != nil {
		zl.Warn("initial identity key fetch failed; retrying on demand", zap.Error(err))
	}
	refreshCancel()
	keyCron, err := keys.StartRefresh(cfg.KeyRefreshSchedule)
	if err != nil {
		zl.Fatal("invalid KEY_REFRESH_SCHEDULE", zap.String("spec", cfg.KeyRefreshSchedule), zap.Error(err))
	}
	if cfg.FirebaseProjectID == "" {
		zl.Warn("FIREBASE_PROJECT_ID not set; every authenticated request will be rejected")
	}
	auth := middleware.NewAuthenticator(identity.NewFirebaseVerifier(cfg.FirebaseProjectID, keys), zl)

	var sealer services.TokenSealer
	if cfg.EncryptionKey == "" {
		zl.Warn("ENCRYPTION_KEY not set; fitness connections are unavailable")
	} else if cipher, err := utils.NewTokenCipher(cfg.EncryptionKey); err != nil {
		zl.Warn("ENCRYPTION_KEY is invalid; fitness connections are unavailable", zap.Error(err))
	} else {
		sealer = cipher
	}

	var mediaProvider media.Provider = media.Nop{}
	if cfg.MediaAPIURL != "" {
		mediaProvider = media.NewGateway(cfg.MediaAPIURL, cfg.MediaAPIKey)
	} else {
		zl.Info("MEDIA_API_URL not set; group sessions carry text and presence only")
	}

	var affirmationList services.ListSubscriber
	if cfg.AffirmationsAPIURL != "" {
		client, err := newsletter.NewClient(cfg.AffirmationsAPIURL, cfg.AffirmationsAPIKey, cfg.AffirmationsListID)
		if err != nil {
			zl.Warn("affirmations list misconfigured", zap.Error(err))
		} else {
			affirmationList = client
		}
	}

	var uploader services.Uploader
	if cfg.CloudinaryEnabled() {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			zl.Warn("failed to initialize Cloudinary; uploads disabled", zap.Error(err))
		} else {
			uploader = cld
		}
	} else {
		zl.Info("Cloudinary credentials not found; uploads disabled")
	}

	sessions := services.NewSessionRegistry(mediaProvider, zl)
	svc := handlers.Services{
		Chat:     services.NewChatService(stores.Chats, responder.NewClient(cfg.ResponderURL, cfg.ResponderTimeout), historyCache, zl),
		Posts:    services.NewPostService(stores.Posts, zl),
		Schedule: services.NewScheduleService(stores.Schedules, zl),
		Users: services.NewUserService(stores.Users, services.AccountData{
			Chats:     stores.Chats,
			Posts:     stores.Posts,
			Schedules: stores.Schedules,
			Moods:     stores.Moods,
			Fitness:   stores.Fitness,
		}, historyCache, zl),
		Moods: services.NewMoodService(stores.Moods, zl),
		Fitness: services.NewFitnessService(stores.Users, stores.Fitness, map[string]services.ActivitySource{
			models.ProviderGoogleFit: googlefit.NewClient(cfg.GoogleFitBaseURL),
		}, sealer, zl),
		Sessions:     sessions,
		Affirmations: services.NewAffirmationService(affirmationList, zl),
		Resources:    services.NewResourceService(stores.Resources, zl),
		Uploader:     uploader,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(zl))
	r.Use(metrics.InstrumentHandler)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit.
	// Elsewhere the shared Redis limiter runs when Redis is configured.
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost, cfg.TrustProxy) {
			r.Use(mw)
		}
		zl.Info("production security enabled", zap.String("allowed_host", cfg.AllowedHost))
	} else {
		r.Use(middleware.RedisRateLimit(database.RedisClient, cfg.TrustProxy, zl))
	}

	routes.SetupRoutes(r, handlers.New(svc, cfg.AllowedOrigins, zl), auth, routes.Options{TrustProxy: cfg.TrustProxy})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("MindHaven backend running", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	zl.Info("shutting down")

	// Close sessions first so WebSocket writers see their channels close.
	sessions.Close()
	keyCron.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Warn("graceful shutdown failed", zap.Error(err))
	}
}
