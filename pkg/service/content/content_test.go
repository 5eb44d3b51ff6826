package content_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grc-lookup/pkg/service/content"
)

type fakeStore struct {
	mu    sync.Mutex
	files map[string]string
	err   error
	gets  []string
}

func (s *fakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets = append(s.gets, key)
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.files[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(v), nil
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

const membersPage = `# Team Members

Intro paragraph.

### Ada Lovelace - Compliance Lead
**Role:** Head of Regulatory Compliance
**Location:** San Francisco, CA
**LinkedIn:** https://linkedin.com/in/ada
**Email:** ada@example.com

Ada has led privacy programs for ten years.
She specializes in CCPA.

**Expertise:** CCPA, CPRA

### Budi Santoso - Engineer
**Email:** budi@example.com

Budi builds the ingestion pipeline.

### Not a member line
`

func TestService(t *testing.T) {
	ctx := context.Background()

	t.Run("renders about page with heading ids and hard wraps", func(t *testing.T) {
		store := &fakeStore{files: map[string]string{
			"about.md": "# About Us\nline one\nline two\n\n| a | b |\n|---|---|\n| 1 | 2 |\n",
		}}
		svc := content.New(store)

		page := svc.About(ctx)
		gt.Value(t, page.Error).Equal("")
		gt.String(t, page.HTML).Contains(`<h1 id="about-us">About Us</h1>`)
		gt.String(t, page.HTML).Contains("line one<br>")
		gt.String(t, page.HTML).Contains("<table>")
		gt.String(t, page.Raw).Contains("line two")
	})

	t.Run("caches fetched pages for the timeout", func(t *testing.T) {
		store := &fakeStore{files: map[string]string{"about.md": "# About"}}
		c := &clock{now: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)}
		svc := content.New(store, content.WithClock(c.Now))

		svc.About(ctx)
		c.now = c.now.Add(4 * time.Minute)
		svc.About(ctx)
		gt.Array(t, store.gets).Length(1)

		status := svc.Status()
		gt.Number(t, status.Count).Equal(1)
		gt.Value(t, status.Entries[0].Filename).Equal("about.md")
		gt.Value(t, status.Entries[0].Age).Equal(4 * time.Minute)

		c.now = c.now.Add(time.Minute)
		svc.About(ctx)
		gt.Array(t, store.gets).Length(2)

		svc.Clear()
		gt.Number(t, svc.Status().Count).Equal(0)
	})

	t.Run("falls back when the store fails", func(t *testing.T) {
		store := &fakeStore{err: errors.New("bucket unavailable")}
		svc := content.New(store)

		about := svc.About(ctx)
		gt.String(t, about.Error).Contains("bucket unavailable")
		gt.Value(t, about.Raw).Equal(content.Fallback(content.AboutFile))
		gt.String(t, about.HTML).Contains("About GRC Compliance Lookup")

		members := svc.Members(ctx)
		gt.Value(t, members.Members).Equal(content.FallbackMembers())
		gt.String(t, members.HTML).Contains("Team Members")

		md, err := svc.Fetch(ctx, "faq.md")
		gt.Value(t, err).NotNil()
		gt.Value(t, md).Equal("# Content Unavailable\n\nPlease check back later.")
		gt.Number(t, svc.Status().Count).Equal(0)
	})

	t.Run("extracts members", func(t *testing.T) {
		store := &fakeStore{files: map[string]string{"members.md": membersPage}}
		page := content.New(store).Members(context.Background())
		gt.Value(t, page.Error).Equal("")
		gt.Array(t, page.Members).Length(2).Required()

		ada := page.Members[0]
		gt.Value(t, ada.Name).Equal("Ada Lovelace")
		gt.Value(t, ada.Role).Equal("Compliance Lead")
		gt.Value(t, ada.FullRole).Equal("Head of Regulatory Compliance")
		gt.Value(t, ada.Location).Equal("San Francisco, CA")
		gt.Value(t, ada.LinkedIn).Equal("https://linkedin.com/in/ada")
		gt.Value(t, ada.Email).Equal("ada@example.com")
		gt.Value(t, ada.Bio).Equal("Ada has led privacy programs for ten years.\nShe specializes in CCPA.")

		budi := page.Members[1]
		gt.Value(t, budi.Email).Equal("budi@example.com")
		gt.Value(t, budi.Bio).Equal("")
	})
}

func TestExtractMembers(t *testing.T) {
	gt.Array(t, content.ExtractMembers("# No members here")).Length(0)
	gt.Array(t, content.ExtractMembers("### Solo - Title")).Length(0)
}
