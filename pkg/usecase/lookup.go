package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
	"github.com/secmon-lab/grc-lookup/pkg/utils/logging"
)

// LookupUseCase answers requirement queries for the controllers
type LookupUseCase struct {
	registry *model.JurisdictionRegistry
	cache    *RequirementCache
	guidance interfaces.GuidanceService
	content  interfaces.ContentService
	now      func() time.Time
}

// NewLookupUseCase creates a LookupUseCase. guidance and content may be nil.
func NewLookupUseCase(registry *model.JurisdictionRegistry, cache *RequirementCache, guidance interfaces.GuidanceService, content interfaces.ContentService) *LookupUseCase {
	return &LookupUseCase{
		registry: registry,
		cache:    cache,
		guidance: guidance,
		content:  content,
		now:      cache.now,
	}
}

// Jurisdictions returns the configured jurisdictions in catalog order
func (uc *LookupUseCase) Jurisdictions() []*model.Jurisdiction {
	return uc.registry.List()
}

// Requirements returns the filtered requirements of a jurisdiction together
// with facets of the full set. When the source and cache both fail, the
// built-in sample requirements are served and the result is marked degraded.
// Unknown jurisdictions are model.ErrConfig.
func (uc *LookupUseCase) Requirements(ctx context.Context, id types.JurisdictionID, sel model.Selection, forceRefresh bool) (*model.LookupResult, error) {
	j, err := uc.registry.Get(id)
	if err != nil {
		return nil, err
	}

	result := &model.LookupResult{
		Jurisdiction: j,
		Selection:    sel,
	}

	all, err := uc.cache.Get(ctx, id, forceRefresh)
	if err != nil {
		logging.From(ctx).Warn("Serving sample requirements", "jurisdiction", id, "error", err.Error())
		all = uc.sample(id)
		result.Degraded = true
		result.Error = err.Error()
	}

	result.Requirements = FilterRequirements(all, sel)
	result.Facets = Facets(all)
	result.Summary = Summarize(result.Requirements)
	result.Total = len(all)

	return result, nil
}

func (uc *LookupUseCase) sample(id types.JurisdictionID) []model.Requirement {
	reqs, _ := model.NormalizeRows(id, model.SampleRows(id), uc.now())
	return reqs
}

// Requirement finds one requirement by control ID
func (uc *LookupUseCase) Requirement(ctx context.Context, id types.JurisdictionID, controlID string) (*model.Requirement, error) {
	result, err := uc.Requirements(ctx, id, model.Selection{}, false)
	if err != nil {
		return nil, err
	}

	for i := range result.Requirements {
		if result.Requirements[i].ControlID == controlID {
			req := result.Requirements[i]
			return &req, nil
		}
	}
	return nil, goerr.Wrap(ErrRequirementNotFound, "no requirement with control ID",
		goerr.V(model.JurisdictionKey, id),
		goerr.V(ControlIDKey, controlID))
}

// Guidance returns implementation guidance for one requirement
func (uc *LookupUseCase) Guidance(ctx context.Context, id types.JurisdictionID, controlID string) (*model.Guidance, error) {
	if uc.guidance == nil {
		return nil, goerr.Wrap(ErrServiceUnavailable, "guidance service is not configured")
	}

	req, err := uc.Requirement(ctx, id, controlID)
	if err != nil {
		return nil, err
	}
	return uc.guidance.Guidance(ctx, req), nil
}

// About returns the rendered about page
func (uc *LookupUseCase) About(ctx context.Context) (*model.Content, error) {
	if uc.content == nil {
		return nil, goerr.Wrap(ErrServiceUnavailable, "content service is not configured")
	}
	return uc.content.About(ctx), nil
}

// Members returns the rendered members page with extracted members
func (uc *LookupUseCase) Members(ctx context.Context) (*model.Content, error) {
	if uc.content == nil {
		return nil, goerr.Wrap(ErrServiceUnavailable, "content service is not configured")
	}
	return uc.content.Members(ctx), nil
}

// CacheStatus reports the requirement cache
func (uc *LookupUseCase) CacheStatus() *model.CacheStatus {
	return uc.cache.Status()
}

// ClearCache evicts one jurisdiction, or all when id is empty. Unknown
// jurisdictions are model.ErrConfig.
func (uc *LookupUseCase) ClearCache(ctx context.Context, id types.JurisdictionID) error {
	if id == "" {
		uc.cache.Clear()
		logging.From(ctx).Info("Cleared requirement cache")
		return nil
	}

	if _, err := uc.registry.Get(id); err != nil {
		return err
	}
	uc.cache.Clear(id)
	logging.From(ctx).Info("Cleared requirement cache", "jurisdiction", id)
	return nil
}

// Prefetch warms the cache for every jurisdiction and reports the counts
func (uc *LookupUseCase) Prefetch(ctx context.Context) model.PrefetchResult {
	loaded := uc.cache.PrefetchAll(ctx)

	result := make(model.PrefetchResult, len(loaded))
	for id, reqs := range loaded {
		result[id.String()] = len(reqs)
	}
	return result
}
