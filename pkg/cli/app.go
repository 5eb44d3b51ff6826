package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/cli/config"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/repository/memory"
	"github.com/secmon-lab/grc-lookup/pkg/service/content"
	"github.com/secmon-lab/grc-lookup/pkg/service/guidance"
	"github.com/secmon-lab/grc-lookup/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// appConfig bundles the config groups shared by commands that look up
// requirements
type appConfig struct {
	catalog  config.Catalog
	source   config.Source
	guidance config.Guidance
}

func (x *appConfig) Flags(withGuidance bool) []cli.Flag {
	flags := x.catalog.Flags()
	flags = append(flags, x.source.Flags()...)
	if withGuidance {
		flags = append(flags, x.guidance.Flags()...)
	}
	return flags
}

type app struct {
	registry *model.JurisdictionRegistry
	guidance *guidance.Client
	content  *content.Service
	uc       *usecase.UseCases
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type appOptions struct {
	guidance bool
	content  bool
	version  string

	// waitGuidance connects to knowledge search before returning
	waitGuidance bool
}

// newApp wires the registry, requirement source, cache and optional guidance
// and content services. Close must be called when done.
func (x *appConfig) newApp(ctx context.Context, opts appOptions) (*app, error) {
	registry, err := x.catalog.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load jurisdiction catalog")
	}

	a := &app{registry: registry}

	source, closeSource, err := x.source.Configure(ctx, registry)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure requirement source")
	}
	a.closers = append(a.closers, closeSource)

	ucOpts := []usecase.Option{
		usecase.WithCacheOptions(usecase.WithCacheTimeout(x.source.CacheTimeout())),
	}

	if opts.guidance {
		a.guidance = x.guidance.Configure(ctx, opts.version, opts.waitGuidance)
		ucOpts = append(ucOpts, usecase.WithGuidance(a.guidance))
	}

	if opts.content {
		store, closeStore, err := x.source.ContentStore(ctx)
		if err != nil {
			a.Close()
			return nil, goerr.Wrap(err, "failed to configure content store")
		}
		a.closers = append(a.closers, closeStore)
		a.content = content.New(store)
		ucOpts = append(ucOpts, usecase.WithContent(a.content))
	}

	a.uc = usecase.New(registry, source, memory.New().Requirement(), ucOpts...)
	return a, nil
}
