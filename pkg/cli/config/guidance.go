package config

import (
	"context"
	"log/slog"

	"github.com/secmon-lab/grc-lookup/pkg/service/guidance"
	"github.com/secmon-lab/grc-lookup/pkg/utils/async"
	"github.com/secmon-lab/grc-lookup/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Guidance holds CLI flags for the knowledge-search client
type Guidance struct {
	endpoint  string
	disabled  bool
	rateLimit float64
}

// Flags returns CLI flags for guidance configuration
func (x *Guidance) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "guidance-endpoint",
			Usage:       "Knowledge-search service endpoint",
			Value:       guidance.DefaultEndpoint,
			Category:    "Guidance",
			Sources:     cli.EnvVars(EnvPrefix + "_GUIDANCE_ENDPOINT"),
			Destination: &x.endpoint,
		},
		&cli.BoolFlag{
			Name:        "guidance-disabled",
			Usage:       "Never contact the knowledge-search service; serve built-in guidance only",
			Category:    "Guidance",
			Sources:     cli.EnvVars(EnvPrefix + "_GUIDANCE_DISABLED"),
			Destination: &x.disabled,
		},
		&cli.FloatFlag{
			Name:        "guidance-rate-limit",
			Usage:       "Maximum knowledge-search requests per second",
			Value:       2,
			Category:    "Guidance",
			Sources:     cli.EnvVars(EnvPrefix + "_GUIDANCE_RATE_LIMIT"),
			Destination: &x.rateLimit,
		},
	}
}

// LogValue implements slog.LogValuer
func (x Guidance) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("endpoint", x.endpoint),
		slog.Bool("disabled", x.disabled),
		slog.Float64("rate_limit", x.rateLimit),
	)
}

// Configure creates the guidance client. Unless disabled, the connection
// handshake runs in the background when wait is false, and the client serves
// fallback guidance until it succeeds.
func (x *Guidance) Configure(ctx context.Context, version string, wait bool) *guidance.Client {
	opts := []guidance.Option{
		guidance.WithClientVersion(version),
	}
	if x.endpoint != "" {
		opts = append(opts, guidance.WithEndpoint(x.endpoint))
	}
	if x.rateLimit > 0 {
		burst := int(x.rateLimit) * 2
		if burst < 1 {
			burst = 1
		}
		opts = append(opts, guidance.WithRateLimit(rate.Limit(x.rateLimit), burst))
	}

	client := guidance.New(opts...)
	if x.disabled {
		logging.Default().Info("Knowledge search disabled, using built-in guidance")
		return client
	}

	if wait {
		client.Connect(ctx)
		return client
	}

	async.Dispatch(ctx, "connect knowledge search", func(ctx context.Context) error {
		client.Connect(ctx)
		return nil
	})
	return client
}
