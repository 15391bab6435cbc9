package domain

import "testing"

func TestParsePartialDate(t *testing.T) {
	intp := func(v int) *int { return &v }

	tests := []struct {
		name      string
		input     string
		wantOK    bool
		wantYear  *int
		wantMonth *int
		wantDay   *int
	}{
		{"year only", "1950", true, intp(1950), nil, nil},
		{"dotted pivot low yy", "01.09.25", true, intp(2025), intp(9), intp(1)},
		{"dotted pivot high yy", "01.09.26", true, intp(1926), intp(9), intp(1)},
		{"dotted four digit year", "14.03.1950", true, intp(1950), intp(3), intp(14)},
		{"day month year full name", "14 March 1950", true, intp(1950), intp(3), intp(14)},
		{"month year abbreviation", "Mar 1950", true, intp(1950), intp(3), nil},
		{"month year full name", "March 1950", true, intp(1950), intp(3), nil},
		{"abt modifier stripped", "abt 1950", true, intp(1950), nil, nil},
		{"circa modifier stripped", "circa 1950", true, intp(1950), nil, nil},
		{"tilde modifier stripped", "~1950", true, intp(1950), nil, nil},
		{"c dot modifier stripped", "c. 1950", true, intp(1950), nil, nil},
		{"empty string", "", false, nil, nil, nil},
		{"garbage", "not a date", false, nil, nil, nil},
		{"invalid month in dotted form", "01.13.50", false, nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePartialDate(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParsePartialDate(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !intPtrEqual(got.Year, tt.wantYear) {
				t.Errorf("Year = %v, want %v", derefOrNil(got.Year), derefOrNil(tt.wantYear))
			}
			if !intPtrEqual(got.Month, tt.wantMonth) {
				t.Errorf("Month = %v, want %v", derefOrNil(got.Month), derefOrNil(tt.wantMonth))
			}
			if !intPtrEqual(got.Day, tt.wantDay) {
				t.Errorf("Day = %v, want %v", derefOrNil(got.Day), derefOrNil(tt.wantDay))
			}
		})
	}
}

func TestPartialDate_YearOnlyRoundTrip(t *testing.T) {
	d, ok := ParsePartialDate("14 March 1950")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	canonical := d.String()
	if canonical != "1950" {
		t.Fatalf("canonical form = %q, want 1950", canonical)
	}
	reparsed, ok := ParsePartialDate(canonical)
	if !ok {
		t.Fatal("expected canonical form to re-parse")
	}
	if reparsed.String() != canonical {
		t.Fatalf("round-trip not idempotent: got %q, want %q", reparsed.String(), canonical)
	}
}

func TestPartialDate_IsZero(t *testing.T) {
	if !(PartialDate{}).IsZero() {
		t.Error("expected zero-value PartialDate to report IsZero")
	}
	d, _ := ParsePartialDate("1950")
	if d.IsZero() {
		t.Error("expected parsed date to not be zero")
	}
}

func derefOrNil(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
