package tablesource_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/service/tablesource"
	"github.com/secmon-lab/grc-lookup/pkg/utils/retry"
)

func newRegistry(t *testing.T, table model.TableSource) *model.JurisdictionRegistry {
	t.Helper()
	registry := model.NewJurisdictionRegistry()
	gt.NoError(t, registry.Register(&model.Jurisdiction{
		ID:    "indonesia",
		Name:  "Indonesia",
		Table: table,
	})).Required()
	return registry
}

var fastRetry = tablesource.WithRetryPolicy(retry.Policy{Attempts: 3, BaseDelay: time.Millisecond})

func TestFetch(t *testing.T) {
	ctx := context.Background()
	creds := model.TableSource{APIKey: "key-123", BaseID: "appBase"}

	t.Run("follows offset pagination with bearer token", func(t *testing.T) {
		var paths, offsets, auths []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			offsets = append(offsets, r.URL.Query().Get("offset"))
			auths = append(auths, r.Header.Get("Authorization"))

			var resp map[string]any
			if r.URL.Query().Get("offset") == "" {
				resp = map[string]any{
					"records": []map[string]any{
						{"id": "rec1", "fields": map[string]any{"Control_ID": "UUPDP-001", "Title": "Consent"}},
					},
					"offset": "page2",
				}
			} else {
				resp = map[string]any{
					"records": []map[string]any{
						{"id": "rec2", "fields": map[string]any{
							"Control_ID":    "OJK-001",
							"Title":         "IT Risk",
							"Applicable_To": []string{"Financial Services", " Mobile App "},
							"Last_Updated":  2024,
						}},
					},
				}
			}
			_ = json.NewEncoder(w).Encode(resp)
		}))
		defer srv.Close()

		src := tablesource.New(newRegistry(t, creds), tablesource.WithAPIBase(srv.URL), fastRetry)
		rows, err := src.Fetch(ctx, "indonesia")
		gt.NoError(t, err).Required()
		gt.Array(t, rows).Length(2).Required()

		gt.Value(t, paths).Equal([]string{"/v0/appBase/Requirements", "/v0/appBase/Requirements"})
		gt.Value(t, offsets).Equal([]string{"", "page2"})
		gt.Value(t, auths[0]).Equal("Bearer key-123")

		reqs, dropped := model.NormalizeRows("indonesia", rows, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
		gt.Number(t, dropped).Equal(0)
		gt.Array(t, reqs).Length(2).Required()
		gt.Value(t, reqs[0].Framework).Equal(model.DefaultFramework)
		gt.Value(t, reqs[0].Domain).Equal(model.DefaultDomain)
		gt.Value(t, reqs[0].ApplicableTo).Equal([]string{})
		gt.Value(t, reqs[1].ApplicableTo).Equal([]string{"Financial Services", "Mobile App"})
		gt.Value(t, reqs[1].LastUpdated).Equal("2024")
	})

	t.Run("custom table name", func(t *testing.T) {
		var path string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			_, _ = w.Write([]byte(`{"records":[]}`))
		}))
		defer srv.Close()

		src := tablesource.New(newRegistry(t, model.TableSource{APIKey: "k", BaseID: "b", TableName: "Controls"}),
			tablesource.WithAPIBase(srv.URL), fastRetry)
		rows, err := src.Fetch(ctx, "indonesia")
		gt.NoError(t, err).Required()
		gt.Array(t, rows).Length(0)
		gt.Value(t, path).Equal("/v0/b/Controls")
	})

	t.Run("retries non-2xx and fails with ErrFetch", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		src := tablesource.New(newRegistry(t, creds), tablesource.WithAPIBase(srv.URL), fastRetry)
		_, err := src.Fetch(ctx, "indonesia")
		gt.Error(t, err).Is(model.ErrFetch)
		gt.Number(t, calls.Load()).Equal(int32(3))
	})

	t.Run("missing credentials are ErrConfig", func(t *testing.T) {
		src := tablesource.New(newRegistry(t, model.TableSource{BaseID: "b"}), fastRetry)
		_, err := src.Fetch(ctx, "indonesia")
		gt.Error(t, err).Is(model.ErrConfig)

		src = tablesource.New(newRegistry(t, model.TableSource{APIKey: "k"}), fastRetry)
		_, err = src.Fetch(ctx, "indonesia")
		gt.Error(t, err).Is(model.ErrConfig)
	})

	t.Run("unknown jurisdiction is ErrConfig", func(t *testing.T) {
		src := tablesource.New(newRegistry(t, creds), fastRetry)
		_, err := src.Fetch(ctx, "california")
		gt.Error(t, err).Is(model.ErrConfig)
	})
}
