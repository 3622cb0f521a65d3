package timeslot

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		code string
		want Range
	}{
		{"1-2节", Range{1, 2}},
		{"1-2", Range{1, 2}},
		{"3-5节", Range{3, 5}},
		{" 6-7节 ", Range{6, 7}},
		{"第1-2节", Range{1, 2}},
		{"10~11", Range{10, 11}},
		{"第1节", Range{1, 1}},
		{"第12节", Range{12, 12}},
		{"3", Range{3, 3}},
		{"2-2节", Range{2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := Decode(tt.code)
			if err != nil {
				t.Fatalf("Decode(%q) error: %v", tt.code, err)
			}
			if got != tt.want {
				t.Errorf("Decode(%q) = %+v, want %+v", tt.code, got, tt.want)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []string{
		"abc",
		"",
		"节",
		"第节",
		"1-",
		"3-1节",
		"0",
		"13",
		"11-13节",
		"1-2周",
		"99999999999999999999",
	}

	for _, code := range tests {
		t.Run(code, func(t *testing.T) {
			_, err := Decode(code)
			if err == nil {
				t.Fatalf("Decode(%q) expected error", code)
			}
			if !errors.Is(err, ErrParse) {
				t.Errorf("Decode(%q) error %v does not match ErrParse", code, err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Decode(%q) error is %T, want *ParseError", code, err)
			}
			if pe.Code != code {
				t.Errorf("ParseError.Code = %q, want %q", pe.Code, code)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for start := 1; start <= MaxSlots; start++ {
		for end := start; end <= MaxSlots; end++ {
			r := Range{Start: start, End: end}
			got, err := Decode(Encode(r))
			if err != nil {
				t.Fatalf("Decode(Encode(%+v)) error: %v", r, err)
			}
			if got != r {
				t.Errorf("Decode(Encode(%+v)) = %+v", r, got)
			}
		}
	}
}

func TestEncode(t *testing.T) {
	if got := Encode(Range{1, 2}); got != "1-2节" {
		t.Errorf("Encode = %q, want %q", got, "1-2节")
	}
	if got := Single(4).String(); got != "4-4节" {
		t.Errorf("Single(4).String() = %q, want %q", got, "4-4节")
	}
}

func TestRangeLabel(t *testing.T) {
	if got := (Range{1, 2}).Label(); got != "1-2节 08:00-09:35" {
		t.Errorf("Label = %q", got)
	}
}

func TestStartOf(t *testing.T) {
	h, m, err := StartOf(1)
	if err != nil {
		t.Fatalf("StartOf(1) error: %v", err)
	}
	if h != 8 || m != 0 {
		t.Errorf("StartOf(1) = %02d:%02d, want 08:00", h, m)
	}

	h, m, err = StartOf(6)
	if err != nil {
		t.Fatalf("StartOf(6) error: %v", err)
	}
	if h != 13 || m != 45 {
		t.Errorf("StartOf(6) = %02d:%02d, want 13:45", h, m)
	}

	if _, _, err := StartOf(0); err == nil {
		t.Error("StartOf(0) expected error")
	}
	if _, _, err := EndOf(MaxSlots + 1); err == nil {
		t.Error("EndOf(MaxSlots+1) expected error")
	}
}

func TestPeriodsOrdered(t *testing.T) {
	for i := 1; i <= MaxSlots; i++ {
		p := Periods[i]
		if p.Start >= p.End {
			t.Errorf("period %d: start %s not before end %s", i, p.Start, p.End)
		}
		if i > 1 && Periods[i-1].End > p.Start {
			t.Errorf("period %d starts before period %d ends", i, i-1)
		}
	}
}
