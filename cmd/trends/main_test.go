package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carcrafter/market-api/pkg/model"
)

const fixture = "../../internal/business/market/testdata/listings.csv"

func run(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("SNAPSHOT_STORE", "none")
	t.Setenv("ADDITIONAL_DATASET_PATH", filepath.Join(t.TempDir(), "absent.csv"))
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"--dataset", fixture, "--current-year", "2024"}, args...))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("trends %v: %v", args, err)
	}
	return out.String()
}

func TestOverviewCommand(t *testing.T) {
	out := run(t, "overview")
	for _, want := range []string{"Market overview", "750,000", "Segment: Performance"} {
		if !strings.Contains(out, want) {
			t.Errorf("overview output missing %q:\n%s", want, out)
		}
	}
}

func TestCompaniesCommandOrdersByShare(t *testing.T) {
	out := run(t, "companies", "--top", "2")
	if !strings.Contains(out, "Total: 6 companies") {
		t.Errorf("missing footer:\n%s", out)
	}
	if strings.Contains(out, "BMW") {
		t.Errorf("--top 2 should hide low-share companies:\n%s", out)
	}
}

func TestReportCommandEmitsValidJSON(t *testing.T) {
	out := run(t, "report")
	var report map[string]any
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if _, ok := report["market_overview"]; !ok {
		t.Errorf("report missing market_overview")
	}
}

func TestChartsCommandWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dash.html")
	run(t, "charts", "-o", path)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dashboard: %v", err)
	}
	if !strings.Contains(string(data), "Car Market Trends") {
		t.Errorf("dashboard missing title")
	}
}

func TestSnapshotCommandNeedsStore(t *testing.T) {
	t.Setenv("SNAPSHOT_STORE", "none")
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--dataset", fixture, "snapshot"})
	if err := cmd.Execute(); err != errNoStore {
		t.Errorf("err = %v, want errNoStore", err)
	}
}

func TestMoney(t *testing.T) {
	if got := money(1234567.891); got != "1,234,567.89" {
		t.Errorf("money = %q", got)
	}
	if got := money(math.NaN()); got != "n/a" {
		t.Errorf("money(NaN) = %q", got)
	}
}

func TestRenderCompaniesTieBreak(t *testing.T) {
	trends := map[string]model.CompanyTrend{
		"Beta":  {Stats: model.CompanyStats{MarketShare: 50}},
		"Alpha": {Stats: model.CompanyStats{MarketShare: 50}},
	}
	out := renderCompanies(trends, 0)
	if strings.Index(out, "Alpha") > strings.Index(out, "Beta") {
		t.Errorf("equal shares should sort by name:\n%s", out)
	}
}
