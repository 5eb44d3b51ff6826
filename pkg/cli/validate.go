package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
	"github.com/secmon-lab/grc-lookup/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg appConfig
	var fetch bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "fetch",
			Usage:       "Also fetch every jurisdiction from the configured source",
			Destination: &fetch,
		},
	}
	flags = append(flags, appCfg.Flags(false)...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the jurisdiction catalog and source settings, optionally fetching every jurisdiction",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			// Step 1: Load catalog and build the source
			a, err := appCfg.newApp(ctx, appOptions{version: c.Root().Version})
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			defer a.Close()

			logger.Info("Configuration validation passed", "jurisdiction_count", len(a.registry.IDs()))
			for _, j := range a.registry.List() {
				logger.Info("Jurisdiction validated",
					"id", j.ID,
					"name", j.Name,
					"file", j.FileName(),
					"table_configured", j.ValidateTable() == nil,
				)
			}

			// Step 2: If requested, fetch every jurisdiction
			if !fetch {
				logger.Info("Fetch not requested, skipping source check")
				return nil
			}

			var failed []types.JurisdictionID
			for _, id := range a.registry.IDs() {
				reqs, err := a.uc.Cache.Get(ctx, id, true)
				if err != nil {
					logger.Warn("Source check failed", "jurisdiction", id, "error", err.Error())
					failed = append(failed, id)
					continue
				}
				logger.Info("Source check passed", "jurisdiction", id, "requirements", len(reqs))
			}

			if len(failed) > 0 {
				return fmt.Errorf("source check failed for %d jurisdiction(s): %v", len(failed), failed)
			}

			logger.Info("Source check passed")
			return nil
		},
	}
}
