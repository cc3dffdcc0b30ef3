package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// multiSpacePattern matches multiple consecutive whitespace characters
	multiSpacePattern = regexp.MustCompile(`\s+`)
	// headerSeparatorPattern matches the separators allowed in CSV headers
	headerSeparatorPattern = regexp.MustCompile(`[\s\-]+`)
	// ordinalPattern matches owner phrases such as "Second Owner"
	ordinalPattern = regexp.MustCompile(`(?i)^(first|second|third|fourth)`)
)

// missingMarkers are cell values treated as absent.
var missingMarkers = map[string]struct{}{
	"":      {},
	"nan":   {},
	"na":    {},
	"n/a":   {},
	"null":  {},
	"none":  {},
	"<nil>": {},
}

// canonicalFuel maps lower-cased fuel labels to their display form.
var canonicalFuel = map[string]string{
	"petrol":   "Petrol",
	"diesel":   "Diesel",
	"electric": "Electric",
	"cng":      "CNG",
	"lpg":      "LPG",
	"hybrid":   "Hybrid",
}

// canonicalTransmission maps lower-cased transmission labels to their display form.
var canonicalTransmission = map[string]string{
	"manual":    "Manual",
	"automatic": "Automatic",
	"amt":       "AMT",
	"cvt":       "CVT",
	"dct":       "DCT",
}

var ownerOrdinals = map[string]int{
	"first":  1,
	"second": 2,
	"third":  3,
	"fourth": 4,
}

// CleanLabel trims a categorical cell and collapses inner whitespace.
// Missing markers such as "NaN" or "null" become the empty string.
func CleanLabel(s string) string {
	if IsMissing(s) {
		return ""
	}
	s = multiSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// IsMissing reports whether a raw cell holds no value.
func IsMissing(s string) bool {
	_, ok := missingMarkers[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// CleanFuelType normalises a fuel label ("petrol" -> "Petrol").
func CleanFuelType(s string) string {
	s = CleanLabel(s)
	if c, ok := canonicalFuel[strings.ToLower(s)]; ok {
		return c
	}
	return s
}

// CleanTransmission normalises a transmission label ("automatic" -> "Automatic").
func CleanTransmission(s string) string {
	s = CleanLabel(s)
	if c, ok := canonicalTransmission[strings.ToLower(s)]; ok {
		return c
	}
	return s
}

// NormalizeHeader lower-cases a CSV header and joins its words with underscores.
func NormalizeHeader(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	h = headerSeparatorPattern.ReplaceAllString(h, "_")
	return strings.ToLower(h)
}

// ParseOwnerCount accepts either a number ("2") or an ordinal phrase
// ("Second Owner", "Fourth & Above Owner"). It returns false when neither fits.
func ParseOwnerCount(s string) (int, bool) {
	s = CleanLabel(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return int(n), true
	}
	if m := ordinalPattern.FindStringSubmatch(s); m != nil {
		return ownerOrdinals[strings.ToLower(m[1])], true
	}
	return 0, false
}

// ParseNumber parses a numeric cell, tolerating thousands separators and a
// leading currency sign. Missing cells report false.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if IsMissing(s) {
		return 0, false
	}
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
