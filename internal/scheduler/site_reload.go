package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/vaporshelf/edge/internal/logger"
	"github.com/vaporshelf/edge/internal/sitecfg"
)

// SiteReloader handles periodic reloading of the site data file (locales,
// country table, developer roster, health targets).
type SiteReloader struct {
	loader        *sitecfg.Loader
	registry      *sitecfg.Registry
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewSiteReloader creates a new site data reloader.
func NewSiteReloader(
	siteFile string,
	registry *sitecfg.Registry,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *SiteReloader {
	return &SiteReloader{
		loader:        sitecfg.NewLoader(siteFile),
		registry:      registry,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the site data immediately and begins the periodic reload loop.
// The initial load is fatal on failure; the server cannot resolve locales
// without it.
func (sr *SiteReloader) Start(ctx context.Context) error {
	if err := sr.Reload(); err != nil {
		return fmt.Errorf("initial site data load failed: %w", err)
	}

	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sr.Reload(); err != nil {
					sr.logger.Error("failed to reload site data",
						logger.Error(err))
				}
			case <-sr.manualTrigger:
				sr.logger.Info("manual site data reload triggered")
				if err := sr.Reload(); err != nil {
					sr.logger.Error("failed to reload site data",
						logger.Error(err))
				}
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader.
func (sr *SiteReloader) Stop() {
	close(sr.stopCh)
}

// Reload loads the site file and swaps the registry snapshot.
// A failed reload keeps the previous snapshot live.
func (sr *SiteReloader) Reload() error {
	snap, err := sr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load site data: %w", err)
	}

	sr.registry.Update(snap)

	sr.logger.Info("site data reloaded",
		logger.Int("locales", snap.Locales.Size()),
		logger.Int("countries", snap.Locales.CountryCount()),
		logger.Int("developers", len(snap.Developers)),
		logger.Int("health_targets", len(snap.Targets)))

	return nil
}
