package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grc-lookup/pkg/cli"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
)

const californiaCSV = `Control_ID,Title,Framework,Domain,Risk_Level,Applicable_To
CCPA-001,Right to Know,CCPA,Data Privacy,High,"Web Application, Mobile App"
CCPA-002,Right to Delete,CCPA,Data Privacy,High,Web Application
SB327-001,Reasonable Security Features,SB-327,IoT Security,Medium,IoT Devices
`

func csvBucket(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/california.csv" && r.URL.Path != "/indonesia.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(californiaCSV))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func brokenBucket(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	err := cli.RunWithWriter(context.Background(), append([]string{"grc-lookup"}, args...), "test", &buf)
	return buf.String(), err
}

func TestRun_ValidateCommand_ValidCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	content := `
[[jurisdiction]]
id = "singapore"
name = "Singapore"
frameworks = ["PDPA"]
`
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()

	_, err := runApp(t, "validate", "--catalog", path)
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_InvalidCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	content := `
[[jurisdiction]]
id = "INVALID_ID"
name = "Bad"
`
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()

	_, err := runApp(t, "validate", "--catalog", path)
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_MissingCatalog(t *testing.T) {
	_, err := runApp(t, "validate", "--catalog", filepath.Join(t.TempDir(), "nonexistent.toml"))
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_Fetch(t *testing.T) {
	t.Run("all jurisdictions reachable", func(t *testing.T) {
		srv := csvBucket(t)
		_, err := runApp(t, "validate", "--fetch", "--bucket-url", srv.URL)
		gt.NoError(t, err)
	})

	t.Run("unreachable source", func(t *testing.T) {
		srv := brokenBucket(t)
		_, err := runApp(t, "validate", "--fetch", "--bucket-url", srv.URL, "--retry-attempts", "1")
		gt.Value(t, err).NotNil()
	})
}

func TestRun_LookupCommand(t *testing.T) {
	t.Run("filters and reports facets of the full set", func(t *testing.T) {
		srv := csvBucket(t)
		out, err := runApp(t, "lookup", "--bucket-url", srv.URL, "--risk-level", "High", "--json", "california")
		gt.NoError(t, err).Required()

		var result model.LookupResult
		gt.NoError(t, json.Unmarshal([]byte(out), &result)).Required()
		gt.Bool(t, result.Degraded).False()
		gt.Number(t, result.Total).Equal(3)
		gt.Array(t, result.Requirements).Length(2).Required()
		gt.Value(t, result.Requirements[0].ControlID).Equal("CCPA-001")
		gt.Array(t, result.Requirements[0].ApplicableTo).Equal([]string{"Web Application", "Mobile App"})
		gt.Array(t, result.Facets.Frameworks).Equal([]string{"CCPA", "SB-327"})
		gt.Number(t, result.Summary.ByRiskLevel[types.RiskLevelHigh]).Equal(2)
	})

	t.Run("falls back to sample data", func(t *testing.T) {
		srv := brokenBucket(t)
		out, err := runApp(t, "lookup", "--bucket-url", srv.URL, "--retry-attempts", "1", "--json", "california")
		gt.NoError(t, err).Required()

		var result model.LookupResult
		gt.NoError(t, json.Unmarshal([]byte(out), &result)).Required()
		gt.Bool(t, result.Degraded).True()
		gt.String(t, result.Error).NotEqual("")
		gt.Number(t, result.Total).GreaterOrEqual(1)
	})

	t.Run("unknown jurisdiction", func(t *testing.T) {
		srv := csvBucket(t)
		_, err := runApp(t, "lookup", "--bucket-url", srv.URL, "atlantis")
		gt.Value(t, err).NotNil()
	})

	t.Run("text output", func(t *testing.T) {
		srv := csvBucket(t)
		out, err := runApp(t, "lookup", "--bucket-url", srv.URL, "--domain", "IoT Security")
		gt.NoError(t, err).Required()
		gt.String(t, out).Contains("California, USA")
		gt.String(t, out).Contains("[SB327-001] Reasonable Security Features")
		gt.String(t, out).NotContains("CCPA-001")
	})
}

func TestRun_GuidanceCommand(t *testing.T) {
	srv := csvBucket(t)
	out, err := runApp(t, "guidance", "--bucket-url", srv.URL, "--guidance-disabled", "--json", "california", "CCPA-001")
	gt.NoError(t, err).Required()

	var g model.Guidance
	gt.NoError(t, json.Unmarshal([]byte(out), &g)).Required()
	gt.Value(t, g.Source).Equal(model.GuidanceSourceFallback)
	gt.Array(t, g.AWSServices).Length(6)

	_, err = runApp(t, "guidance", "--bucket-url", srv.URL, "--guidance-disabled", "california", "NOPE-999")
	gt.Value(t, err).NotNil()

	_, err = runApp(t, "guidance", "--guidance-disabled", "california")
	gt.Value(t, err).NotNil()
}

func TestRun_PrefetchCommand(t *testing.T) {
	t.Run("reports counts", func(t *testing.T) {
		srv := csvBucket(t)
		out, err := runApp(t, "prefetch", "--bucket-url", srv.URL, "--json")
		gt.NoError(t, err).Required()

		var result model.PrefetchResult
		gt.NoError(t, json.Unmarshal([]byte(out), &result)).Required()
		gt.Number(t, result["california"]).Equal(3)
		gt.Number(t, result["indonesia"]).Equal(3)
	})

	t.Run("strict fails on empty jurisdictions", func(t *testing.T) {
		srv := brokenBucket(t)
		out, err := runApp(t, "prefetch", "--bucket-url", srv.URL, "--retry-attempts", "1", "--strict")
		gt.Value(t, err).NotNil()
		gt.String(t, out).Contains("california")
	})
}

func TestRun_JurisdictionsCommand(t *testing.T) {
	out, err := runApp(t, "jurisdictions")
	gt.NoError(t, err).Required()
	gt.String(t, out).Contains("California, USA")
	gt.String(t, out).Contains("Indonesia")
	gt.String(t, out).Contains("America/Los_Angeles")
}
