package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const (
	// DefaultPurgeSpec runs the reset token purge at the top of every hour.
	DefaultPurgeSpec = "0 * * * *"

	refreshTimeout = 30 * time.Second
)

// ResetPurger deletes password reset tokens that can no longer be used.
type ResetPurger interface {
	PurgeExpired() (int64, error)
}

// CatalogRefresher reloads the in-memory product snapshot.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

// HousekeepingScheduler runs the periodic maintenance jobs.
type HousekeepingScheduler struct {
	cron        *cron.Cron
	resets      ResetPurger
	catalog     CatalogRefresher
	purgeSpec   string
	refreshSpec string
}

func NewHousekeepingScheduler(resets ResetPurger, catalog CatalogRefresher, refreshSpec string) *HousekeepingScheduler {
	return &HousekeepingScheduler{
		cron:        cron.New(),
		resets:      resets,
		catalog:     catalog,
		purgeSpec:   DefaultPurgeSpec,
		refreshSpec: refreshSpec,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *HousekeepingScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.purgeSpec, s.PurgeResetTokens); err != nil {
		logger.Error("Failed to add cron job for reset token purge", err)
		return err
	}

	if s.refreshSpec != "" {
		if _, err := s.cron.AddFunc(s.refreshSpec, s.RefreshCatalog); err != nil {
			logger.Error("Failed to add cron job for catalog refresh", err, map[string]interface{}{
				"spec": s.refreshSpec,
			})
			return err
		}
	}

	s.cron.Start()
	logger.Info("Housekeeping scheduler started", map[string]interface{}{
		"purge_spec":   s.purgeSpec,
		"refresh_spec": s.refreshSpec,
	})
	return nil
}

// Stop waits for running jobs to finish.
func (s *HousekeepingScheduler) Stop() {
	logger.Info("Stopping housekeeping scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Housekeeping scheduler stopped", nil)
}

func (s *HousekeepingScheduler) PurgeResetTokens() {
	purged, err := s.resets.PurgeExpired()
	if err != nil {
		logger.Error("Failed to purge password reset tokens", err)
		return
	}
	if purged > 0 {
		logger.Info("Purged password reset tokens", map[string]interface{}{
			"count": purged,
		})
	}
}

func (s *HousekeepingScheduler) RefreshCatalog() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := s.catalog.Refresh(ctx); err != nil {
		logger.Error("Failed to refresh catalog snapshot", err)
		return
	}
	logger.Debug("Catalog snapshot refreshed", nil)
}
