package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/marcosvidal/carniceria-go/adapters/events"
	"github.com/marcosvidal/carniceria-go/adapters/store"
	"github.com/marcosvidal/carniceria-go/interfaces"
	"github.com/marcosvidal/carniceria-go/internal"
	"github.com/marcosvidal/carniceria-go/internal/cli"
	"github.com/marcosvidal/carniceria-go/internal/cli/cli_cmds"
	"github.com/marcosvidal/carniceria-go/services"
)

func main() {
	cfg, log := internal.Init()

	if err := run(cfg, log); err != nil {
		log.Fatal(internal.ComponentGeneral, "Error running carniceria: %v", err)
	}
}

func run(cfg *internal.Config, logger *internal.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout())
	binding, err := store.Bind(ctx, cfg, logger)
	cancel()
	if err != nil {
		return fmt.Errorf("error binding store: %w", err)
	}
	defer binding.Close()

	var publisher interfaces.EventPublisher = events.NoopPublisher{}
	if cfg.Events.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.Subject, logger)
		if err != nil {
			// Eventing is best effort; a missing broker never blocks the shop.
			logger.Warn(internal.ComponentEvents, "Eventing disabled: %v", err)
		} else {
			publisher = natsPublisher
			defer natsPublisher.Close()
		}
	}

	if binding.Degraded() {
		// Dashboards listening on the event stream learn about degraded mode
		// once, at startup.
		_ = publisher.Publish(interfaces.Event{
			ID:        uuid.New().String(),
			Type:      interfaces.EventTypeStoreDegraded,
			Timestamp: time.Now(),
			Data:      map[string]any{"bound": binding.Store().Name()},
		})
	}

	accounting, err := services.NewAccountingService(cfg, binding, publisher, logger)
	if err != nil {
		return fmt.Errorf("error building accounting service: %w", err)
	}

	seedCtx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout())
	err = accounting.EnsureDefaultCategories(seedCtx)
	cancel()
	if err != nil {
		logger.Warn(internal.ComponentCategory, "Could not seed default categories: %v", err)
	}

	// Setup the Root Command with access to services
	rootParams := &cli.CmdParams{
		Config:     cfg,
		Logger:     logger,
		Accounting: accounting,
		Binding:    binding,
		Palette:    nil,
		Use:        "carniceria",
		Alias:      internal.DefaultAppCMDShortCut,
		Short:      "Carnicería back-office accounting",
		Long:       "Carnicería back-office accounting - daily ledger, category vocabulary and derived reports",
	}

	// Generate command palette
	palette := cli_cmds.GeneratePalette(rootParams)
	rootParams.Palette = palette

	// Create root command
	rootCmd := cli.NewRootCMD(rootParams)

	// Execute root command
	if err := rootCmd.Root.Execute(); err != nil {
		return fmt.Errorf("error executing root command: %v", err)
	}

	return nil
}
