package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdGuidance() *cli.Command {
	var appCfg appConfig
	var asJSON bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the result as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, appCfg.Flags(true)...)

	return &cli.Command{
		Name:      "guidance",
		Aliases:   []string{"g"},
		Usage:     "Show implementation guidance for one requirement",
		ArgsUsage: "<jurisdiction> <control-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 2 {
				return goerr.New("jurisdiction and control ID are required", goerr.V("args", c.Args().Slice()))
			}
			controlID := c.Args().Get(1)

			a, err := appCfg.newApp(ctx, appOptions{
				guidance:     true,
				waitGuidance: true,
				version:      c.Root().Version,
			})
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.uc.Lookup.Guidance(ctx, jurisdictionArg(c), controlID)
			if err != nil {
				return goerr.Wrap(err, "failed to get guidance")
			}

			if asJSON {
				return writeJSON(c.Root().Writer, result)
			}
			printGuidance(c.Root().Writer, controlID, result)
			return nil
		},
	}
}
