package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"brandguard-platform/internal/config"
	"brandguard-platform/internal/docstore"
	"brandguard-platform/internal/logger"
	"brandguard-platform/internal/registry"
)

// GroundingGapScanner periodically checks every registered client for an
// empty document corpus. A client with zero documents cannot generate
// anything; surfacing the gap early beats a string of
// insufficient-context failures at request time.
type GroundingGapScanner struct {
	config    *config.Config
	registry  registry.Registry
	store     docstore.Store
	scheduler *gocron.Scheduler
}

func NewGroundingGapScanner(cfg *config.Config, reg registry.Registry, store docstore.Store) *GroundingGapScanner {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	return &GroundingGapScanner{
		config:    cfg,
		registry:  reg,
		store:     store,
		scheduler: s,
	}
}

// Start registers the scan on the configured cron expression and runs the
// scheduler in the background.
func (g *GroundingGapScanner) Start() error {
	_, err := g.scheduler.Cron(g.config.GroundingScanCron).Tag("grounding-gap-scan").Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := g.ScanAllClients(ctx); err != nil {
			logger.Error("Grounding gap scan failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	g.scheduler.StartAsync()
	logger.Info("Grounding gap scanner started", "cron", g.config.GroundingScanCron)
	return nil
}

func (g *GroundingGapScanner) Stop() {
	g.scheduler.Stop()
}

// ScanAllClients walks the registry and reports every tenant whose corpus is
// empty. Scan errors for one client do not stop the walk.
func (g *GroundingGapScanner) ScanAllClients(ctx context.Context) error {
	profiles, err := g.registry.List(ctx)
	if err != nil {
		return err
	}

	gaps := 0
	for _, profile := range profiles {
		count, err := g.store.Count(ctx, profile.ClientID)
		if err != nil {
			logger.Error("Failed to count documents", "client_id", profile.ClientID, "error", err)
			continue
		}

		if count == 0 {
			gaps++
			logger.Warn("Client has no grounding documents; generation will be rejected",
				"client_id", profile.ClientID,
				"deliverable_types", profile.DeliverableTypes,
			)
		}
	}

	logger.Info("Grounding gap scan complete", "clients", len(profiles), "gaps", gaps)
	return nil
}
