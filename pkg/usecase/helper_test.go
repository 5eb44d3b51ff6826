package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
)

// fakeSource is a RequirementSource returning configurable rows per
// jurisdiction and counting calls
type fakeSource struct {
	mu      sync.Mutex
	rows    map[types.JurisdictionID][]model.RawRow
	errs    map[types.JurisdictionID]error
	calls   map[types.JurisdictionID]int
	entered chan struct{}
	release chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		rows:  make(map[types.JurisdictionID][]model.RawRow),
		errs:  make(map[types.JurisdictionID]error),
		calls: make(map[types.JurisdictionID]int),
	}
}

func (s *fakeSource) Fetch(ctx context.Context, id types.JurisdictionID) ([]model.RawRow, error) {
	s.mu.Lock()
	s.calls[id]++
	entered, release := s.entered, s.release
	s.mu.Unlock()

	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[id]; err != nil {
		return nil, err
	}
	return s.rows[id], nil
}

func (s *fakeSource) set(id types.JurisdictionID, rows []model.RawRow, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[id] = rows
	s.errs[id] = err
}

func (s *fakeSource) count(id types.JurisdictionID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

// fakeClock is a settable time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newRegistry(t *testing.T) *model.JurisdictionRegistry {
	t.Helper()
	registry := model.NewJurisdictionRegistry()
	for _, j := range model.DefaultJurisdictions() {
		gt.NoError(t, registry.Register(j)).Required()
	}
	return registry
}

func row(controlID, title, framework, domain, risk string) model.RawRow {
	return model.RawRow{
		model.FieldControlID: controlID,
		model.FieldTitle:     title,
		model.FieldFramework: framework,
		model.FieldDomain:    domain,
		model.FieldRiskLevel: risk,
	}
}

var californiaRows = []model.RawRow{
	row("CCPA-001", "Right to Know", "CCPA", "Data Privacy", "High"),
	row("CPRA-002", "Sensitive Data", "CPRA", "Data Privacy", "High"),
	row("SB327-001", "Reasonable Security", "SB-327", "IoT Security", "Medium"),
	row("CCPA-003", "Opt-Out", "CCPA", "Data Privacy", "Low"),
}
