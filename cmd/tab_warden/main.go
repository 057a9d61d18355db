package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgnsrekt/tab_warden/internal/api"
	"github.com/dgnsrekt/tab_warden/internal/browser"
	"github.com/dgnsrekt/tab_warden/internal/config"
	"github.com/dgnsrekt/tab_warden/internal/host"
	"github.com/dgnsrekt/tab_warden/internal/llm"
	"github.com/dgnsrekt/tab_warden/internal/netutil"
	"github.com/dgnsrekt/tab_warden/internal/notify"
	"github.com/dgnsrekt/tab_warden/internal/organizer"
	"github.com/dgnsrekt/tab_warden/internal/store"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}

	slog.Info("tab_warden config loaded",
		"cdp_url", cfg.CDPURL(),
		"bind_addr", cfg.BindAddr,
		"bind_fallback", cfg.BindFallback,
		"data_dir", cfg.DataDir,
		"llm_provider", cfg.LLMProvider,
		"auto_dedupe", cfg.AutoDedupe,
		"auto_group", cfg.AutoGroup,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	bindAddr, err := netutil.SelectBindAddr(cfg.BindAddr, cfg.BindCandidates, cfg.BindFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}

	if cfg.LaunchBrowser {
		launcher := browser.NewLauncher(browser.Config{
			CDPAddress: cfg.CDPAddress,
			CDPPort:    cfg.CDPPort,
			StartURL:   cfg.StartURL,
			ProfileDir: cfg.ProfileDir,
			WindowSize: cfg.WindowSize,
		})
		if err := launcher.Launch(context.Background()); err != nil {
			slog.Error("failed to launch browser", "error", err)
			os.Exit(1)
		}
		defer launcher.Stop()
	}

	client := host.NewClient(cfg.CDPURL())
	if err := client.Connect(context.Background()); err != nil {
		slog.Error("failed to connect to browser", "cdp_url", cfg.CDPURL(), "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slog.Debug("host client close failed", "error", err)
		}
	}()

	st, err := store.NewStore(cfg.DataDir)
	if err != nil {
		slog.Error("failed to create data store", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	actions := store.NewActionLog(cfg.DataDir, cfg.BufferSize, cfg.MaxFileSizeMB)
	defer func() {
		if err := actions.Close(); err != nil {
			slog.Debug("action log close failed", "error", err)
		}
	}()

	var completer llm.Completer
	if cfg.LLMProvider != "" {
		completer, err = llm.NewProvider(llm.Config{
			Provider:     cfg.LLMProvider,
			APIKey:       cfg.LLMAPIKey,
			Endpoint:     cfg.LLMEndpoint,
			Model:        cfg.LLMModel,
			ExtraHeaders: cfg.LLMExtraHeaders,
		})
		if err != nil {
			slog.Error("failed to configure LLM provider", "provider", cfg.LLMProvider, "error", err)
			os.Exit(1)
		}
		slog.Info("LLM provider configured", "provider", cfg.LLMProvider)
	} else {
		slog.Info("no LLM provider configured, topic and similarity grouping disabled")
	}

	extractor := host.NewExtractor(cfg.CDPURL(), 10*time.Second, cfg.ContentSnippetSz)
	defer extractor.Close()

	svc, err := organizer.New(client, st, organizer.Options{
		Completer: completer,
		Fetcher:   organizer.NewContentFetcher(extractor),
		Actions:   actions,
		Notifier:  notify.New(cfg.NotifyEndpoint, nil),
	})
	if err != nil {
		slog.Error("failed to build organizer", "error", err)
		os.Exit(1)
	}

	// Environment overrides seed the automation settings on first run.
	if cfg.AutoDedupe || cfg.AutoGroup {
		settings := svc.Settings()
		settings.AutoDedupe = settings.AutoDedupe || cfg.AutoDedupe
		settings.AutoGroup = settings.AutoGroup || cfg.AutoGroup
		if err := svc.UpdateSettings(settings); err != nil {
			slog.Warn("failed to apply automation settings", "error", err)
		}
	}

	watcher := organizer.NewWatcher(svc, time.Duration(cfg.DebounceMS)*time.Millisecond)
	watcher.Bind(client)
	defer watcher.Stop()

	srv := &http.Server{Addr: bindAddr, Handler: api.NewServer(svc)}

	go func() {
		slog.Info("tab_warden listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("tab_warden server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("tab_warden shutdown failed", "error", err)
	}
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
