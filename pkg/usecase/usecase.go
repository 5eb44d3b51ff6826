package usecase

import (
	"github.com/secmon-lab/grc-lookup/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
)

type UseCases struct {
	registry     *model.JurisdictionRegistry
	guidance     interfaces.GuidanceService
	content      interfaces.ContentService
	cacheOptions []CacheOption
	Cache        *RequirementCache
	Lookup       *LookupUseCase
}

type Option func(*UseCases)

func WithGuidance(svc interfaces.GuidanceService) Option {
	return func(uc *UseCases) {
		uc.guidance = svc
	}
}

func WithContent(svc interfaces.ContentService) Option {
	return func(uc *UseCases) {
		uc.content = svc
	}
}

func WithCacheOptions(opts ...CacheOption) Option {
	return func(uc *UseCases) {
		uc.cacheOptions = append(uc.cacheOptions, opts...)
	}
}

func New(registry *model.JurisdictionRegistry, source interfaces.RequirementSource, repo interfaces.RequirementRepository, opts ...Option) *UseCases {
	uc := &UseCases{
		registry: registry,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Cache = NewRequirementCache(registry, source, repo, uc.cacheOptions...)
	uc.Lookup = NewLookupUseCase(registry, uc.Cache, uc.guidance, uc.content)

	return uc
}
