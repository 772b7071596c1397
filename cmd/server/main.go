// Package main is the entry point of the application
package main

import (
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tecu23/room-server/internal/auth"
	"github.com/tecu23/room-server/pkg/config"
	"github.com/tecu23/room-server/pkg/events"
	"github.com/tecu23/room-server/pkg/manager"
	"github.com/tecu23/room-server/pkg/repository"
	"github.com/tecu23/room-server/pkg/rules"
	"github.com/tecu23/room-server/pkg/server"
)

// App encapsulates global dependencies
type application struct {
	Auth      *auth.APIKeyAuth
	Logger    *zap.Logger
	Config    *config.Config
	Publisher *events.Publisher
	Hub       *server.Hub
	Server    *http.Server

	StartTime time.Time
}

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	port := flag.String("port", "8080", "server port")
	flag.Parse()

	cfg := &config.Config{
		Debug: *debug,
		Port:  *port,
	}

	// Initialize logger
	logger := initLogger(cfg.Debug)
	defer logger.Sync()

	// .env is optional; the environment may be set directly.
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file loaded", zap.Error(err))
	}

	cfg.LoadEnv()

	// Initialize event publisher
	publisher := events.NewPublisher()

	// Initialize room registry storage
	repo := repository.NewInMemoryRepository(logger)

	// Initialize session coordinator
	coordinator := manager.NewManager(
		repo,
		rules.NewAdapter(),
		clockwork.NewRealClock(),
		cfg.DefaultTimeControlMinutes,
		logger,
		publisher,
	)

	hub := server.NewHub(coordinator, logger)

	// Lifecycle visibility without touching the hot path.
	publisher.Subscribe(events.EventRoomStarted, func(event events.Event) {
		logger.Info("game started",
			zap.String("room_id", event.RoomID),
			zap.Int("active_rooms", len(repo.ListActive())))
	})
	publisher.Subscribe(events.EventGameOver, func(event events.Event) {
		logger.Info("game over",
			zap.String("room_id", event.RoomID),
			zap.Int("active_rooms", len(repo.ListActive())))
	})

	var authKeys []string

	if envAPIKeys := os.Getenv("API_KEYS"); envAPIKeys != "" {
		// Split comma-separated list of API keys
		keys := strings.Split(envAPIKeys, ",")
		for i, key := range keys {
			keys[i] = strings.TrimSpace(key)
		}
		authKeys = keys
	}

	app := &application{
		Auth:      auth.NewAPIKeyAuth(authKeys),
		Logger:    logger,
		Config:    cfg,
		Hub:       hub,
		Publisher: publisher,
		StartTime: time.Now(),
	}

	go app.Hub.Run()

	if err := app.serve(); err != nil {
		logger.Fatal("error serving", zap.Error(err))
	}
}

func initLogger(debug bool) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	return logger
}

// Shutdown cleans up resources
func (app *application) Shutdown() {
	// Shut down hub
	if app.Hub != nil {
		app.Hub.Shutdown()
	}

	app.Logger.Info("All components shut down successfully")
}
