package utils

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseRawBalance(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		decimals uint8
		want     float64
	}{
		{"one ether in wei", "1000000000000000000", 18, 1},
		{"fractional", "1234500000000000000", 18, 1.2345},
		{"six decimals", "2500000", 6, 2.5},
		{"zero decimals", "42", 0, 42},
		{"zero balance", "0", 18, 0},
		{"empty string", "", 18, 0},
		{"malformed", "not-a-number", 18, 0},
		{"whitespace", "  1000000  ", 6, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRawBalance(tt.raw, tt.decimals)
			if !almostEqual(got, tt.want) {
				t.Errorf("ParseRawBalance(%q, %d) = %v, want %v", tt.raw, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestParseRecordBalance(t *testing.T) {
	six := uint8(6)

	tests := []struct {
		name      string
		formatted string
		raw       string
		decimals  *uint8
		want      float64
	}{
		{"formatted preferred", "2.5", "9999999999", &six, 2.5},
		{"raw with decimals", "", "2500000", &six, 2.5},
		{"raw defaults to 18 decimals", "", "1000000000000000000", nil, 1},
		{"malformed formatted falls back to raw", "abc", "2500000", &six, 2.5},
		{"both empty", "", "", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRecordBalance(tt.formatted, tt.raw, tt.decimals)
			if !almostEqual(got, tt.want) {
				t.Errorf("ParseRecordBalance(%q, %q) = %v, want %v", tt.formatted, tt.raw, got, tt.want)
			}
		})
	}
}

func TestBatchStrings(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	batches := BatchStrings(items, 2)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 2 || len(batches[2]) != 1 {
		t.Errorf("unexpected batch sizes: %v", batches)
	}

	if got := BatchStrings(nil, 2); len(got) != 0 {
		t.Errorf("expected no batches for empty input, got %v", got)
	}

	single := BatchStrings(items, 0)
	if len(single) != 1 || len(single[0]) != 5 {
		t.Errorf("expected one batch for non-positive batch size, got %v", single)
	}
}
