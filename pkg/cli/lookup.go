package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func jurisdictionArg(c *cli.Command) types.JurisdictionID {
	if id := c.Args().First(); id != "" {
		return types.JurisdictionID(id)
	}
	return model.DefaultJurisdictionID
}

func cmdLookup() *cli.Command {
	var appCfg appConfig
	var sel model.Selection
	var refresh bool
	var asJSON bool

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "framework",
			Aliases:     []string{"f"},
			Usage:       "Only show requirements of this framework",
			Value:       model.SelectAll,
			Destination: &sel.Framework,
		},
		&cli.StringFlag{
			Name:        "risk-level",
			Aliases:     []string{"r"},
			Usage:       "Only show requirements of this risk level",
			Value:       model.SelectAll,
			Destination: &sel.RiskLevel,
		},
		&cli.StringFlag{
			Name:        "domain",
			Aliases:     []string{"d"},
			Usage:       "Only show requirements of this domain",
			Value:       model.SelectAll,
			Destination: &sel.Domain,
		},
		&cli.BoolFlag{
			Name:        "refresh",
			Usage:       "Bypass the cache",
			Destination: &refresh,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the result as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, appCfg.Flags(false)...)

	return &cli.Command{
		Name:      "lookup",
		Aliases:   []string{"l"},
		Usage:     "Show the requirements of a jurisdiction",
		ArgsUsage: "[jurisdiction]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := appCfg.newApp(ctx, appOptions{version: c.Root().Version})
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.uc.Lookup.Requirements(ctx, jurisdictionArg(c), sel, refresh)
			if err != nil {
				return goerr.Wrap(err, "failed to look up requirements")
			}

			if asJSON {
				return writeJSON(c.Root().Writer, result)
			}
			printLookupResult(c.Root().Writer, result)
			return nil
		},
	}
}
