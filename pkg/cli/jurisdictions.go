package cli

import (
	"context"

	"github.com/secmon-lab/grc-lookup/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func cmdJurisdictions() *cli.Command {
	var catalogCfg config.Catalog
	var asJSON bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the result as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, catalogCfg.Flags()...)

	return &cli.Command{
		Name:    "jurisdictions",
		Aliases: []string{"j"},
		Usage:   "List configured jurisdictions",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			registry, err := catalogCfg.Configure()
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(c.Root().Writer, registry.List())
			}
			printJurisdictions(c.Root().Writer, registry.List())
			return nil
		},
	}
}
