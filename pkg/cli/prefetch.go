package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdPrefetch() *cli.Command {
	var appCfg appConfig
	var asJSON bool
	var strict bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the result as JSON",
			Destination: &asJSON,
		},
		&cli.BoolFlag{
			Name:        "strict",
			Usage:       "Exit with an error when any jurisdiction loads no requirements",
			Destination: &strict,
		},
	}
	flags = append(flags, appCfg.Flags(false)...)

	return &cli.Command{
		Name:    "prefetch",
		Aliases: []string{"p"},
		Usage:   "Load the requirements of every jurisdiction and report the counts",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := appCfg.newApp(ctx, appOptions{version: c.Root().Version})
			if err != nil {
				return err
			}
			defer a.Close()

			result := a.uc.Lookup.Prefetch(ctx)
			logging.Default().Info("Prefetch completed", "result", result)

			if asJSON {
				if err := writeJSON(c.Root().Writer, result); err != nil {
					return err
				}
			} else {
				printPrefetch(c.Root().Writer, result)
			}

			if strict {
				var empty []string
				for id, n := range result {
					if n == 0 {
						empty = append(empty, id)
					}
				}
				if len(empty) > 0 {
					return goerr.New("some jurisdictions loaded no requirements", goerr.V("jurisdictions", empty))
				}
			}
			return nil
		},
	}
}
