package extractor

import (
	"context"
	"fmt"
	"sync"

	"github.com/aleister1102/giftwatch/internal/config"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog"
)

// BrowserManager owns the single long-lived browser session shared by all
// searches. Each search runs in its own page so failures cannot bleed state
// into another search; the underlying browser is the shared resource.
type BrowserManager struct {
	config    config.ExtractorConfig
	logger    zerolog.Logger
	launcher  *launcher.Launcher
	browser   *rod.Browser
	mutex     sync.Mutex
	isRunning bool
}

// NewBrowserManager creates a new browser manager
func NewBrowserManager(cfg config.ExtractorConfig, logger zerolog.Logger) *BrowserManager {
	return &BrowserManager{
		config: cfg,
		logger: logger.With().Str("component", "BrowserManager").Logger(),
	}
}

// Start launches the browser and connects to it.
func (bm *BrowserManager) Start() error {
	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	if bm.isRunning {
		return nil
	}

	l := launcher.New().
		Headless(bm.config.Headless).
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("disable-default-apps").
		Set("disable-sync")

	if bm.config.ChromePath != "" {
		l = l.Bin(bm.config.ChromePath)
	}

	launcherURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	bm.launcher = l

	browser := rod.New().ControlURL(launcherURL)
	if err := browser.Connect(); err != nil {
		bm.launcher.Cleanup()
		return fmt.Errorf("failed to connect browser: %w", err)
	}
	bm.browser = browser

	bm.isRunning = true
	bm.logger.Info().Bool("headless", bm.config.Headless).Msg("Browser session started")
	return nil
}

// Stop closes the browser and the launcher.
func (bm *BrowserManager) Stop() {
	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	if !bm.isRunning {
		return
	}

	if bm.browser != nil {
		if err := bm.browser.Close(); err != nil {
			bm.logger.Warn().Err(err).Msg("Failed to close browser")
		}
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Cleanup()
		bm.launcher = nil
	}

	bm.isRunning = false
	bm.logger.Info().Msg("Browser session stopped")
}

// IsRunning reports whether the browser session is up.
func (bm *BrowserManager) IsRunning() bool {
	bm.mutex.Lock()
	defer bm.mutex.Unlock()
	return bm.isRunning
}

// NewPage opens a fresh isolated page with stealth evasions, the configured
// viewport/user agent and subresource blocking applied. The returned cleanup
// must be called on every exit path.
func (bm *BrowserManager) NewPage(ctx context.Context) (*rod.Page, func(), error) {
	bm.mutex.Lock()
	browser := bm.browser
	running := bm.isRunning
	bm.mutex.Unlock()

	if !running || browser == nil {
		return nil, nil, fmt.Errorf("browser manager not running")
	}

	page, err := stealth.Page(browser)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create page: %w", err)
	}
	page = page.Context(ctx)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  bm.config.WindowWidth,
		Height: bm.config.WindowHeight,
	}); err != nil {
		bm.logger.Warn().Err(err).Msg("Failed to set viewport")
	}

	if bm.config.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: bm.config.UserAgent,
		}); err != nil {
			bm.logger.Warn().Err(err).Msg("Failed to set user agent")
		}
	}

	var router *rod.HijackRouter
	if bm.config.DisableSubresource {
		router = bm.blockSubresources(page)
	}

	cleanup := func() {
		if router != nil {
			if err := router.Stop(); err != nil {
				bm.logger.Debug().Err(err).Msg("Failed to stop hijack router")
			}
		}
		if err := page.Close(); err != nil {
			bm.logger.Debug().Err(err).Msg("Failed to close page")
		}
	}
	return page, cleanup, nil
}

// blockSubresources strips images, fonts and media from the network path to
// reduce page latency.
func (bm *BrowserManager) blockSubresources(page *rod.Page) *rod.HijackRouter {
	router := page.HijackRequests()
	err := router.Add("*", "", func(hijack *rod.Hijack) {
		switch hijack.Request.Type() {
		case proto.NetworkResourceTypeImage,
			proto.NetworkResourceTypeFont,
			proto.NetworkResourceTypeMedia:
			hijack.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		default:
			hijack.ContinueRequest(&proto.FetchContinueRequest{})
		}
	})
	if err != nil {
		bm.logger.Warn().Err(err).Msg("Failed to register subresource blocker")
		return nil
	}
	go router.Run()
	return router
}
