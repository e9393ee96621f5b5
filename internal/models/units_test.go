package models_test

import (
	"math/big"
	"testing"

	"hilo-gateway-backend/internal/models"
)

func TestParseUnits(t *testing.T) {
	cases := []struct {
		in       string
		decimals uint8
		want     string
		ok       bool
	}{
		{"1", 6, "1000000", true},
		{"12.5", 6, "12500000", true},
		{"0.000001", 6, "1", true},
		{"  3 ", 6, "3000000", true},
		{".5", 2, "50", true},
		{"7.", 2, "700", true},
		{"0", 6, "0", true},
		{"-1.5", 6, "-1500000", true},
		{"1", 0, "1", true},

		{"", 6, "", false},
		{".", 6, "", false},
		{"1.2.3", 6, "", false},
		{"1,5", 6, "", false},
		{"abc", 6, "", false},
		{"1e6", 6, "", false},
		{"0.0000001", 6, "", false}, // 7 fractional digits at 6 decimals
		{"1.5", 0, "", false},
	}

	for _, tc := range cases {
		got, err := models.ParseUnits(tc.in, tc.decimals)
		if tc.ok {
			if err != nil {
				t.Errorf("ParseUnits(%q, %d) failed: %v", tc.in, tc.decimals, err)
				continue
			}
			if got.String() != tc.want {
				t.Errorf("ParseUnits(%q, %d) = %s, want %s", tc.in, tc.decimals, got, tc.want)
			}
		} else if err == nil {
			t.Errorf("ParseUnits(%q, %d) = %s, want error", tc.in, tc.decimals, got)
		}
	}
}

func TestFormatUnits(t *testing.T) {
	cases := []struct {
		in       string
		decimals uint8
		want     string
	}{
		{"1000000", 6, "1"},
		{"1980000", 6, "1.98"},
		{"1", 6, "0.000001"},
		{"0", 6, "0"},
		{"-1500000", 6, "-1.5"},
		{"123", 0, "123"},
	}

	for _, tc := range cases {
		got := models.FormatUnits(mustBig(t, tc.in), tc.decimals)
		if got != tc.want {
			t.Errorf("FormatUnits(%s, %d) = %q, want %q", tc.in, tc.decimals, got, tc.want)
		}
	}
}

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad big int literal %q", s)
	}
	return n
}

// Parse and format are inverses for canonical strings.
func TestUnitsRoundTrip(t *testing.T) {
	for _, s := range []string{"1", "0.5", "123.456789", "0.000001"} {
		n, err := models.ParseUnits(s, 6)
		if err != nil {
			t.Fatalf("ParseUnits(%q): %v", s, err)
		}
		if back := models.FormatUnits(n, 6); back != s {
			t.Errorf("Round trip %q -> %s -> %q", s, n, back)
		}
	}
}
