package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleister1102/giftwatch/internal/config"
	"github.com/aleister1102/giftwatch/internal/datastore"
	"github.com/aleister1102/giftwatch/internal/extractor"
	"github.com/aleister1102/giftwatch/internal/logger"
	"github.com/aleister1102/giftwatch/internal/monitor"
	"github.com/aleister1102/giftwatch/internal/notifier"
	"github.com/aleister1102/giftwatch/internal/searcher"
	"github.com/rs/zerolog"
)

func main() {
	globalConfigFile := flag.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := flag.String("c", "", "Alias for --config")

	modeFlag := flag.String("mode", "automated", "Mode to run the tool: onetime (single cycle) or automated (scheduled)")
	modeFlagAlias := flag.String("m", "", "Alias for --mode")
	flag.Parse()

	if *globalConfigFile == "" && *globalConfigFileAlias != "" {
		*globalConfigFile = *globalConfigFileAlias
	}
	if *modeFlagAlias != "" {
		*modeFlag = *modeFlagAlias
	}
	if *modeFlag != "onetime" && *modeFlag != "automated" {
		log.Fatalf("[FATAL] invalid --mode %q (onetime or automated)", *modeFlag)
	}

	gCfg, err := config.LoadGlobalConfig(*globalConfigFile)
	if err != nil {
		log.Fatalf("[FATAL] could not load global config: %v", err)
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] could not initialize logger: %v", err)
	}
	zLogger.Info().Str("mode", *modeFlag).Msg("giftwatch starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := datastore.NewDB(gCfg.StorageConfig.DBPath, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to open datastore")
	}
	defer func() {
		if err := db.Close(); err != nil {
			zLogger.Warn().Err(err).Msg("Failed to close datastore")
		}
	}()

	browser := extractor.NewBrowserManager(gCfg.ExtractorConfig, zLogger)
	if err := browser.Start(); err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to start browser session")
	}
	defer browser.Stop()

	ext := extractor.NewExtractor(gCfg.ExtractorConfig, zLogger, browser)
	searchService := searcher.NewSearchService(gCfg.SearcherConfig, zLogger, ext, db)

	messenger := buildMessenger(gCfg.NotificationConfig, zLogger)

	service := monitor.NewMonitoringService(
		gCfg.MonitorConfig,
		gCfg.NotificationConfig,
		zLogger,
		db,
		searchService,
		messenger,
	)
	defer service.Close()

	if *modeFlag == "onetime" {
		service.RunCycle(ctx)
		zLogger.Info().Interface("stats", service.GetStats()).Msg("One-time cycle finished")
		return
	}

	if err := service.Start(); err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to start monitoring")
	}

	if gCfg.StorageConfig.HistoryRetentionDays > 0 {
		go runRetentionSweep(ctx, db, gCfg.StorageConfig.HistoryRetentionDays, zLogger)
	}

	<-ctx.Done()
	zLogger.Info().Msg("Shutdown signal received")
	service.Stop()
}

// buildMessenger returns the Telegram notifier, or a log-only stand-in when
// no bot token is configured (useful for local runs against a test catalog).
func buildMessenger(cfg config.NotificationConfig, zLogger zerolog.Logger) monitor.Messenger {
	if cfg.TelegramBotToken == "" {
		zLogger.Warn().Msg("No Telegram bot token configured, notifications will only be logged")
		return &logMessenger{logger: zLogger}
	}

	tg, err := notifier.NewTelegramNotifier(cfg, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to initialize Telegram notifier")
	}
	return tg
}

// runRetentionSweep prunes old history rows once at startup and then daily.
func runRetentionSweep(ctx context.Context, db *datastore.DB, retentionDays int, zLogger zerolog.Logger) {
	sweep := func() {
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		if _, err := db.PruneHistoryBefore(cutoff); err != nil {
			zLogger.Warn().Err(err).Msg("History retention sweep failed")
		}
	}

	sweep()
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sweep()
		case <-ctx.Done():
			return
		}
	}
}

// logMessenger is the no-token fallback messenger.
type logMessenger struct {
	logger zerolog.Logger
}

func (lm *logMessenger) SendMessage(userID int64, text string) (int, error) {
	lm.logger.Info().Int64("user_id", userID).Str("text", text).Msg("Notification (log only)")
	return 0, nil
}

func (lm *logMessenger) EditMessage(userID int64, messageID int, text string) error {
	lm.logger.Debug().Int64("user_id", userID).Int("message_id", messageID).Msg("Stats update (log only)")
	return nil
}
