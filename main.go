package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"activitylog/config"
	"activitylog/database"
	"activitylog/handlers"
	"activitylog/logging"
	"activitylog/mapper"
	"activitylog/store"
	"activitylog/transport"
	"activitylog/tui"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatal("Failed to configure logging: ", err)
	}
	defer closeLog()

	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prefs, closePrefs := preferenceStore(ctx, cfg)
	defer closePrefs()

	s := store.New(
		store.WithMaxEvents(cfg.MaxEvents),
		store.WithPreferences(prefs),
		store.WithDebounce(cfg.PersistDebounce),
		store.WithHonorEmptyFilters(cfg.HonorEmptyFilters),
	)
	s.Load(ctx)
	defer s.Close()

	client := transport.NewClient(cfg.BackendURL, transport.WithChannels(cfg.Channels...))
	go func() {
		err := client.Run(ctx, func(msg transport.Message) {
			s.Ingest(mapper.Raw{Type: msg.Type, Data: msg.Data, ID: msg.ID})
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("Event stream stopped")
		}
	}()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handlers.NewRouter(s, cfg.APIToken),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Server starting on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Server stopped")
			stop()
		}
	}()

	runHeadless := !cfg.TUI
	if cfg.TUI {
		err := tui.Run(ctx, s)
		switch {
		case errors.Is(err, tui.ErrNotTerminal):
			log.Warn("ACTIVITY_TUI is set but stdout is not a terminal, running headless")
			runHeadless = true
		case err != nil:
			log.WithError(err).Error("Terminal view failed")
		}
	}
	if runHeadless {
		<-ctx.Done()
	}
	stop()

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Server shutdown incomplete")
	}
}

// preferenceStore picks Postgres when DATABASE_URL is set and reachable,
// otherwise a JSON file in the user's config directory.
func preferenceStore(ctx context.Context, cfg config.Config) (store.PreferenceStore, func()) {
	if cfg.DatabaseURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		db, err := database.Connect(connectCtx, cfg.DatabaseURL)
		if err == nil {
			return database.NewPreferenceStore(db, ""), db.Close
		}
		log.WithError(err).Warn("Failed to connect to database, using file preferences")
	}

	path := cfg.PreferencesPath
	if path == "" {
		p, err := store.DefaultPreferencesPath()
		if err != nil {
			log.WithError(err).Warn("Preferences will not be saved")
			return store.NopPreferences{}, func() {}
		}
		path = p
	}
	log.WithField("path", path).Debug("Using file preferences")
	return store.FilePreferences{Path: path}, func() {}
}
