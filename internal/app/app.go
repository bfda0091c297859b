package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teledrive-web/internal/authflow"
	"teledrive-web/internal/backend"
	"teledrive-web/internal/config"
	"teledrive-web/internal/drive"
	"teledrive-web/internal/event"
	"teledrive-web/internal/handler"
	"teledrive-web/internal/preview"
	"teledrive-web/internal/router"
	"teledrive-web/internal/session"
	"teledrive-web/internal/tags"
	"teledrive-web/internal/websocket"
)

// flowIdleTTL bounds how long an abandoned sign-in flow is kept.
const flowIdleTTL = 15 * time.Minute

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	api := backend.New(backend.Config{
		BaseURL: cfg.BackendBaseURL,
		Timeout: cfg.BackendTimeout,
	})
	slog.Info("backend client ready", "base_url", cfg.BackendBaseURL)

	sessions, err := session.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.SessionCookie, cfg.SessionSecure)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}

	bus := event.NewBus()
	hub := websocket.NewHub(bus)
	go hub.Run()

	views := drive.NewRegistry(api, cfg.ViewIdleTTL)
	flows := authflow.NewStore(api, flowIdleTTL)

	suggest := tags.New(tags.Config{
		BaseURL: cfg.TagsBaseURL,
		APIKey:  cfg.TagsAPIKey,
		Model:   cfg.TagsModel,
		Timeout: cfg.TagsTimeout,
	})
	if !suggest.Enabled() {
		slog.Warn("tag suggestions disabled, TAGS_API_KEY not set")
	}

	thumbnails := preview.NewGenerator(api, cfg.ThumbnailMaxPixels)

	appRouter := router.New(cfg, sessions, router.Handlers{
		Auth:      handler.NewAuthHandler(flows, api, sessions, views, cfg.SessionSecure),
		Drive:     handler.NewDriveHandler(views, sessions),
		Folder:    handler.NewFolderHandler(views, api, bus),
		Selection: handler.NewSelectionHandler(views, bus),
		Upload:    handler.NewUploadHandler(views, api, bus, cfg.MaxUploadSize),
		Tags:      handler.NewTagsHandler(views, suggest, bus),
		Media:     handler.NewMediaHandler(api, thumbnails),
		WS:        handler.NewWSHandler(hub),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		cleanupFuncs: []func(){
			views.Close,
			flows.Close,
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
