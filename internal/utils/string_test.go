package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsValidInput(t *testing.T) {
	testCases := []struct {
		input    string
		expected bool
	}{
		{"gale", true},
		{"Dawson's", true},
		{"emerald bay, 3", true},
		{"Île", true},
		{"", false},
		{"2021", false},
		{"zzz", false},
		{"zz", true},
		{"reef!", false},
		{"<p>", false},
	}

	for _, tc := range testCases {
		if got := IsValidInput(tc.input); got != tc.expected {
			t.Errorf("IsValidInput(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	testCases := []struct {
		price    float64
		expected string
	}{
		{799, "799.00"},
		{1199.5, "1,199.50"},
		{1999.999, "2,000.00"},
		{1234567.89, "1,234,567.89"},
		{0.5, "0.50"},
		{-1.5, "-1.50"},
		{-1234.05, "-1,234.05"},
	}

	for _, tc := range testCases {
		if got := FormatPrice(tc.price); got != tc.expected {
			t.Errorf("FormatPrice(%v) = %q, want %q", tc.price, got, tc.expected)
		}
	}
}

func TestGetAbsolutePath(t *testing.T) {
	if got := GetAbsolutePath(""); got != "unknown" {
		t.Errorf("GetAbsolutePath(\"\") = %q, want \"unknown\"", got)
	}
	abs := filepath.Join(t.TempDir(), "trips.db")
	if got := GetAbsolutePath(abs); got != abs {
		t.Errorf("GetAbsolutePath(%q) = %q", abs, got)
	}
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(cwd, "data", "trips.db")
	if got := GetAbsolutePath(filepath.Join("data", "trips.db")); got != want {
		t.Errorf("GetAbsolutePath(data/trips.db) = %q, want %q", got, want)
	}
}

func TestRankList(t *testing.T) {
	ranks := RankList(3)
	for i, r := range ranks {
		if int(r) != i+1 {
			t.Errorf("rank[%d] = %d, want %d", i, r, i+1)
		}
	}
	if len(RankList(0)) != 0 || len(RankList(-1)) != 0 {
		t.Error("non-positive counts should produce no ranks")
	}
}
