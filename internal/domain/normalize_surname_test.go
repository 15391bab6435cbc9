package domain

import (
	"slices"
	"testing"
)

func TestSurnameVariants(t *testing.T) {
	tests := []struct {
		surname string
		want    []string
	}{
		{"MacDonald", []string{"mcdonald", "macdonalde"}},
		{"Smith", []string{"smithe"}},
		{"Smythe", []string{"smyth"}},
		{"Johnson", []string{"johnsone", "johnsen"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.surname, func(t *testing.T) {
			got := SurnameVariants(tt.surname)
			for _, want := range tt.want {
				if !slices.Contains(got, want) {
					t.Errorf("SurnameVariants(%q) = %v, want to contain %q", tt.surname, got, want)
				}
			}
		})
	}
}

func TestSurnameVariants_NoDuplicatesOrShortForms(t *testing.T) {
	got := SurnameVariants("Day")
	for _, v := range got {
		if len(v) <= 2 {
			t.Errorf("SurnameVariants(\"Day\") contains a variant too short: %q", v)
		}
	}
	seen := map[string]bool{}
	for _, v := range got {
		if seen[v] {
			t.Errorf("SurnameVariants(\"Day\") produced duplicate %q", v)
		}
		seen[v] = true
	}
}
