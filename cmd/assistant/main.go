package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"vision-voice/config"
	"vision-voice/internal/application"
	"vision-voice/internal/infra/browser"
	"vision-voice/internal/infra/inference"
	"vision-voice/internal/infra/pushover"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Secrets referenced as ${VAR} in the config can live in a .env file.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("loading .env", "error", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	bridge := browser.NewBridge(cfg.Bridge.Addr, cfg.Bridge.AuthToken, cfg.Voice.Language, logger)

	var notifier application.Notifier = bridge.Notifier()
	if cfg.Pushover.Enabled {
		notifier = application.MultiNotifier{
			bridge.Notifier(),
			pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey),
		}
	}

	svc := inference.NewClientWithTimeout(cfg.Inference.BaseURL, cfg.InferenceTimeout())

	pipeline := application.NewPipeline(svc, application.NewOfflineResponder(), logger)
	pipeline.SetRetryPolicy(cfg.Retry.MaxRetries, cfg.RetryDelay())

	speech := bridge.Synthesizer()
	camera := bridge.Camera(cfg.Camera.Scale, cfg.Camera.JPEGQuality)

	notifyRetry := func(attempt, max int) {
		logger.Warn("request failed, retrying", "attempt", attempt, "max", max)
		speech.Speak(ctx, "Connection problem, retrying.")
		notifier.Notify(ctx, fmt.Sprintf("Retrying (%d/%d)", attempt, max))
	}
	pipeline.OnRetry(notifyRetry)

	scan := application.NewScanController(
		camera, pipeline, speech, notifier, bridge.Haptics(), cfg.Voice.Feedback, logger)
	chat := application.NewChatController(
		pipeline, speech, notifier, cfg.Voice.Feedback, logger)

	assistant := application.NewAssistant(
		bridge.Recognizer(), speech, bridge.Navigator(), bridge.Haptics(),
		notifier, scan, chat, logger)
	bridge.OnPage(assistant.SetPage)

	if err := bridge.Start(ctx); err != nil {
		logger.Error("starting bridge", "error", err)
		os.Exit(1)
	}
	defer bridge.Stop()

	logger.Info("waiting for a browser session",
		"addr", cfg.Bridge.Addr,
		"inference", cfg.Inference.BaseURL,
	)

	// One assistant run per browser session: a dead recognition session is
	// never restarted behind the user's back, but a reconnecting browser
	// gets a fresh one.
	for {
		if err := bridge.AwaitSession(ctx); err != nil {
			return
		}

		err := assistant.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return
		}
		if err != nil {
			logger.Error("assistant session ended", "error", err)
		}
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		})
	}

	return slog.New(handler)
}
