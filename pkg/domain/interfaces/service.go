package interfaces

import (
	"context"

	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
)

// GuidanceService produces implementation guidance for a requirement. It
// never fails: when the knowledge-search service is unreachable the static
// fallback table is used.
type GuidanceService interface {
	Guidance(ctx context.Context, req *model.Requirement) *model.Guidance
}

// ContentService serves the rendered markdown pages
type ContentService interface {
	About(ctx context.Context) *model.Content
	Members(ctx context.Context) *model.Content
}
