package util

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type sanitizeInner struct {
	Score float64 `json:"score"`
	Count int32   `json:"count"`
}

type sanitizeOuter struct {
	Name     string                `json:"name"`
	Ratio    float64               `json:"ratio"`
	Optional *float64              `json:"optional"`
	Skipped  string                `json:"-"`
	Omitted  string                `json:"omitted,omitempty"`
	ByYear   map[int]sanitizeInner `json:"by_year"`
	Values   []float64             `json:"values"`
	When     time.Time             `json:"when"`
	hidden   int
}

func TestSanitizeScalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "nil", in: nil, want: nil},
		{name: "NaN becomes zero", in: math.NaN(), want: 0.0},
		{name: "+Inf becomes zero", in: math.Inf(1), want: 0.0},
		{name: "-Inf becomes zero", in: math.Inf(-1), want: 0.0},
		{name: "finite float passes", in: 12.5, want: 12.5},
		{name: "float32 widened", in: float32(0.5), want: 0.5},
		{name: "int widened", in: 7, want: int64(7)},
		{name: "uint widened", in: uint8(3), want: uint64(3)},
		{name: "string passes", in: "Petrol", want: "Petrol"},
		{name: "bool passes", in: true, want: true},
		{name: "nil pointer is null", in: (*float64)(nil), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Sanitize(tt.in)); diff != "" {
				t.Errorf("Sanitize mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSanitizeStruct(t *testing.T) {
	when := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	in := sanitizeOuter{
		Name:    "BMW",
		Ratio:   math.NaN(),
		Skipped: "secret",
		ByYear: map[int]sanitizeInner{
			2020: {Score: math.Inf(1), Count: 2},
		},
		Values: []float64{1, math.NaN()},
		When:   when,
		hidden: 9,
	}

	want := map[string]any{
		"name":     "BMW",
		"ratio":    0.0,
		"optional": nil,
		"by_year": map[string]any{
			"2020": map[string]any{"score": 0.0, "count": int64(2)},
		},
		"values": []any{1.0, 0.0},
		"when":   when,
	}

	if diff := cmp.Diff(want, Sanitize(in)); diff != "" {
		t.Errorf("Sanitize mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []any{
		map[string]any{
			"a": math.NaN(),
			"b": []any{math.Inf(-1), 3, "x", nil},
			"c": map[string]float64{"d": math.Inf(1)},
		},
		sanitizeOuter{Name: "Audi", Ratio: 0.25, Values: []float64{math.NaN()}},
		[]int{1, 2, 3},
	}

	for i, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("input %d: Sanitize not idempotent (-once +twice):\n%s", i, diff)
		}
	}
}

func TestSanitizeOutputEncodes(t *testing.T) {
	in := map[string]any{
		"nested": []any{
			map[string]float64{"nan": math.NaN(), "inf": math.Inf(1)},
			sanitizeInner{Score: math.NaN()},
		},
	}
	out := Sanitize(in)
	if hasNonFinite(out) {
		t.Fatalf("sanitized output still holds NaN/Inf: %#v", out)
	}
	if _, err := json.Marshal(out); err != nil {
		t.Fatalf("json.Marshal sanitized output: %v", err)
	}
}

func hasNonFinite(v any) bool {
	switch x := v.(type) {
	case float64:
		return math.IsNaN(x) || math.IsInf(x, 0)
	case map[string]any:
		for _, e := range x {
			if hasNonFinite(e) {
				return true
			}
		}
	case []any:
		for _, e := range x {
			if hasNonFinite(e) {
				return true
			}
		}
	}
	return false
}
