package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/dgnsrekt/tabdedup/internal/api"
	"github.com/dgnsrekt/tabdedup/internal/browser"
	"github.com/dgnsrekt/tabdedup/internal/cdphost"
	"github.com/dgnsrekt/tabdedup/internal/config"
	"github.com/dgnsrekt/tabdedup/internal/dedup"
	"github.com/dgnsrekt/tabdedup/internal/engine"
	"github.com/dgnsrekt/tabdedup/internal/netutil"
	"github.com/dgnsrekt/tabdedup/internal/notify"
	"github.com/dgnsrekt/tabdedup/internal/relay"
	"github.com/dgnsrekt/tabdedup/internal/settings"
	"github.com/dgnsrekt/tabdedup/internal/storage"
	"github.com/dgnsrekt/tabdedup/internal/watch"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	slog.Info("tabdedup config loaded",
		"cdp_url", cfg.CDPURL(),
		"bind_addr", cfg.BindAddr,
		"data_dir", cfg.DataDir,
		"track_loads", cfg.TrackLoads,
		"settle_delay_ms", cfg.SettleDelayMS,
		"activate_on_resolve", cfg.ActivateOnResolve,
		"journal", cfg.JournalEnabled,
		"launch_browser", cfg.LaunchBrowser,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var launcher *browser.Launcher
	if cfg.LaunchBrowser {
		launcher = browser.NewLauncher(browser.Config{
			Binary:     cfg.BrowserBinary,
			CDPAddress: cfg.CDPAddress,
			CDPPort:    cfg.CDPPort,
			StartURL:   cfg.BrowserStartURL,
			ProfileDir: cfg.BrowserProfileDir,
		})
		if err := launcher.Launch(ctx); err != nil {
			slog.Error("failed to launch browser", "error", err)
			os.Exit(1)
		}
		defer launcher.Stop()
	}

	bindAddr, err := netutil.SelectBindAddr(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}

	blobs, err := storage.NewBlobStore(cfg.DataDir)
	if err != nil {
		slog.Error("failed to open data dir", "data_dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	store := settings.NewStore(blobs, seededDefaults(cfg.SettingsSeedFile))
	if err := store.Load(ctx); err != nil {
		slog.Warn("settings load failed, using defaults", "error", err)
	}

	broker := relay.NewBroker()
	opts := []engine.Option{
		engine.WithFeed(broker),
		engine.WithActivateOnResolve(cfg.ActivateOnResolve),
		engine.WithNotifier(newNotifier(cfg), cfg.NotifyTitle),
	}

	if cfg.JournalEnabled {
		journal, err := storage.NewJSONLWriter(filepath.Join(cfg.DataDir, "closures.jsonl"), cfg.JournalBuffer, cfg.JournalMaxSizeMB, 5)
		if err != nil {
			slog.Error("failed to open closure journal", "error", err)
			os.Exit(1)
		}
		defer func() { _ = journal.Close() }()
		opts = append(opts, engine.WithJournal(journal))
	}

	opTimeout := time.Duration(cfg.OpTimeoutMS) * time.Millisecond
	host := cdphost.NewClient(cfg.CDPURL(), opTimeout, cdphost.WithLoadTracking(cfg.TrackLoads))
	if err := host.Connect(ctx); err != nil {
		slog.Warn("browser not reachable yet, retrying in background", "cdp_url", cfg.CDPURL(), "error", err)
	}
	defer func() { _ = host.Close() }()

	svc := engine.NewService(host, store, opts...)
	tee := relay.NewRelay(broker, 0)
	watcher := watch.New(svc, host, time.Duration(cfg.SettleDelayMS)*time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		_ = host.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		tee.Run(ctx, host.Events())
	}()
	go func() {
		defer wg.Done()
		watcher.Run(ctx, tee.Events())
	}()

	srv := &http.Server{Addr: bindAddr, Handler: api.NewServer(svc, broker)}
	go func() {
		slog.Info("tabdedup listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("api shutdown failed", "error", err)
	}
	wg.Wait()
}

// seededDefaults returns the built-in defaults with the optional YAML seed
// applied. Persisted settings are later merged over the result.
func seededDefaults(path string) dedup.Settings {
	defaults := dedup.DefaultSettings()
	if path == "" {
		return defaults
	}
	patch, err := config.LoadSettingsSeed(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("ignoring settings seed", "path", path, "error", err)
		}
		return defaults
	}
	slog.Info("settings seed applied", "path", path)
	return defaults.Merge(patch)
}

func newNotifier(cfg *config.Config) engine.Notifier {
	if cfg.NotifyEndpoint == "" {
		return notify.Log{}
	}
	return notify.NewNTFY(&http.Client{Timeout: 5 * time.Second}, cfg.NotifyEndpoint)
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
