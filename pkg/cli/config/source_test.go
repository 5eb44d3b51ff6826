package config_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grc-lookup/pkg/cli/config"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/service/csvsource"
	"github.com/secmon-lab/grc-lookup/pkg/service/tablesource"
)

const californiaCSV = "Control_ID,Title,Framework\nCCPA-001,Right to Know,CCPA\n"

type recorder struct {
	mu      sync.Mutex
	paths   []string
	headers []http.Header
}

func (r *recorder) handler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		r.paths = append(r.paths, req.URL.Path)
		r.headers = append(r.headers, req.Header.Clone())
		r.mu.Unlock()
		_, _ = w.Write([]byte(body))
	}
}

func newRegistry(t *testing.T) *model.JurisdictionRegistry {
	t.Helper()
	registry, err := config.NewCatalogForTest("", noEnv).Configure()
	gt.NoError(t, err).Required()
	return registry
}

func TestSourceConfigureCSV(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(californiaCSV))
	defer srv.Close()

	cfg := config.NewSourceForTest("csv", "http", srv.URL, "")
	src, closer, err := cfg.Configure(context.Background(), newRegistry(t))
	gt.NoError(t, err).Required()
	defer closer()

	_, ok := src.(*csvsource.Source)
	gt.Bool(t, ok).True()

	rows, err := src.Fetch(context.Background(), "california")
	gt.NoError(t, err).Required()
	gt.Array(t, rows).Length(1).Required()
	gt.Value(t, rows[0]["Control_ID"]).Equal("CCPA-001")

	gt.Array(t, rec.paths).Equal([]string{"/california.csv"})
	gt.Value(t, rec.headers[0].Get("Accept")).Equal("text/csv")
	gt.Value(t, rec.headers[0].Get("Cache-Control")).Equal("max-age=300")
}

func TestSourceConfigureCDNOverridesBucket(t *testing.T) {
	bucketRec := &recorder{}
	bucket := httptest.NewServer(bucketRec.handler(californiaCSV))
	defer bucket.Close()

	cdnRec := &recorder{}
	cdn := httptest.NewServer(cdnRec.handler(californiaCSV))
	defer cdn.Close()

	cfg := config.NewSourceForTest("csv", "http", bucket.URL, cdn.URL)
	src, closer, err := cfg.Configure(context.Background(), newRegistry(t))
	gt.NoError(t, err).Required()
	defer closer()

	_, err = src.Fetch(context.Background(), "indonesia")
	gt.NoError(t, err).Required()
	gt.Array(t, cdnRec.paths).Equal([]string{"/indonesia.csv"})
	gt.Array(t, bucketRec.paths).Length(0)
}

func TestSourceConfigureTable(t *testing.T) {
	cfg := config.NewSourceForTest("table", "http", "https://example.com", "")
	src, closer, err := cfg.Configure(context.Background(), newRegistry(t))
	gt.NoError(t, err).Required()
	defer closer()

	_, ok := src.(*tablesource.Source)
	gt.Bool(t, ok).True()

	_, err = src.Fetch(context.Background(), "california")
	gt.Error(t, err).Is(model.ErrConfig)
}

func TestSourceConfigureInvalid(t *testing.T) {
	t.Run("unknown source", func(t *testing.T) {
		cfg := config.NewSourceForTest("spreadsheet", "http", "https://example.com", "")
		_, _, err := cfg.Configure(context.Background(), newRegistry(t))
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("unknown store", func(t *testing.T) {
		cfg := config.NewSourceForTest("csv", "ftp", "https://example.com", "")
		_, _, err := cfg.Configure(context.Background(), newRegistry(t))
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		cfg := config.NewSourceForTest("csv", "s3", "", "")
		_, _, err := cfg.Configure(context.Background(), newRegistry(t))
		gt.Error(t, err).Is(model.ErrConfig)
	})

	t.Run("bucket URL without scheme", func(t *testing.T) {
		cfg := config.NewSourceForTest("csv", "http", "bucket.example.com", "")
		_, _, err := cfg.Configure(context.Background(), newRegistry(t))
		gt.Error(t, err).Is(model.ErrConfig)
	})
}

func TestSourceContentStore(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler("# About"))
	defer srv.Close()

	cfg := config.NewSourceForTest("csv", "http", srv.URL+"/", "")
	store, closer, err := cfg.ContentStore(context.Background())
	gt.NoError(t, err).Required()
	defer closer()

	data, err := store.Get(context.Background(), "about.md")
	gt.NoError(t, err).Required()
	gt.Value(t, string(data)).Equal("# About")
	gt.Array(t, rec.paths).Equal([]string{"/content/about.md"})
	gt.Value(t, rec.headers[0].Get("Cache-Control")).Equal("no-cache")
}

func TestSourceRetryPolicy(t *testing.T) {
	cfg := config.NewSourceForTest("csv", "http", "https://example.com", "")
	p := cfg.RetryPolicy()
	gt.Number(t, p.Attempts).Equal(3)
	gt.Value(t, p.BaseDelay).Equal(time.Second)

	cfg.SetRetryForTest(5, 10*time.Millisecond)
	p = cfg.RetryPolicy()
	gt.Number(t, p.Attempts).Equal(5)
	gt.Value(t, p.BaseDelay).Equal(10 * time.Millisecond)

	gt.Value(t, cfg.CacheTimeout()).Equal(model.DefaultCacheTimeout)
}
