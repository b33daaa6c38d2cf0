package reading

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
		wantErr bool
	}{
		{name: "plain", payload: "37", want: 37},
		{name: "zero", payload: "0", want: 0},
		{name: "surrounding whitespace", payload: "  42\r\n", want: 42},
		{name: "negative", payload: "-5", want: -5},
		{name: "explicit plus", payload: "+8", want: 8},
		{name: "overflow saturates high", payload: "99999999999999999999999", want: math.MaxInt},
		{name: "overflow saturates low", payload: "-99999999999999999999999", want: math.MinInt},
		{name: "empty", payload: "", wantErr: true},
		{name: "whitespace only", payload: "   ", wantErr: true},
		{name: "decimal", payload: "12.5", wantErr: true},
		{name: "word", payload: "far", wantErr: true},
		{name: "json", payload: `{"distance":37}`, wantErr: true},
		{name: "long digit string saturates", payload: strings.Repeat("9", 80), want: math.MaxInt},
		{name: "long negative saturates", payload: "-" + strings.Repeat("9", 80), want: math.MinInt},
		{name: "zero padded", payload: strings.Repeat("0", 65) + "37", want: 37},
		{name: "long garbage", payload: strings.Repeat("9", 80) + "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.payload))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedPayload) {
					t.Fatalf("Parse(%q) error = %v, want ErrMalformedPayload", tt.payload, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.payload, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.payload, got, tt.want)
			}
		})
	}
}

func TestParse_InvalidUTF8Discarded(t *testing.T) {
	got, err := Parse([]byte{'3', 0xff, '7'})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got != 37 {
		t.Errorf("Parse() = %d, want 37", got)
	}
}

func TestRange_Clamp(t *testing.T) {
	rng := DefaultRange()

	tests := []struct {
		in   int
		want int
	}{
		{in: -5, want: 0},
		{in: 0, want: 0},
		{in: 37, want: 37},
		{in: 10000, want: 10000},
		{in: 999999, want: 10000},
		{in: math.MinInt, want: 0},
		{in: math.MaxInt, want: 10000},
	}

	for _, tt := range tests {
		if got := rng.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRange_Validate(t *testing.T) {
	if err := DefaultRange().Validate(); err != nil {
		t.Errorf("DefaultRange().Validate() error = %v", err)
	}
	if err := (Range{Min: 5, Max: 5}).Validate(); err != nil {
		t.Errorf("single-point range error = %v", err)
	}
	err := Range{Min: 10, Max: 1}.Validate()
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Validate() error = %v, want ErrInvalidRange", err)
	}
}

func TestReading_Age(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := New(37, t0)
	if got := r.Age(t0.Add(1500 * time.Millisecond)); got != 1500*time.Millisecond {
		t.Errorf("Age() = %v, want 1.5s", got)
	}
}

func TestParse_LongValueClampsToRange(t *testing.T) {
	rng := DefaultRange()

	v, err := Parse([]byte(strings.Repeat("9", 80)))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := rng.Clamp(v); got != DefaultMax {
		t.Errorf("Clamp(Parse(80 nines)) = %d, want %d", got, DefaultMax)
	}
}
