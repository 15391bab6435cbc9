package domain

import "testing"

func TestParseName(t *testing.T) {
	tests := []struct {
		input       string
		wantGiven   string
		wantSurname string
	}{
		{"Jane Smith", "Jane", "Smith"},
		{"Given Mid Surname", "Given Mid", "Surname"},
		{"Madonna", "Madonna", ""},
		{"John Smith (not found)", "John", "Smith"},
		{"  Jane   Smith  ", "Jane", "Smith"},
		{"", "", ""},
		{"(not found)", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			given, surname := ParseName(tt.input)
			if given != tt.wantGiven || surname != tt.wantSurname {
				t.Errorf("ParseName(%q) = (%q, %q), want (%q, %q)", tt.input, given, surname, tt.wantGiven, tt.wantSurname)
			}
		})
	}
}

func TestNamesSimilar(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"William", "william", true},
		{"William", "Bill", true},
		{"William", "Will", true},
		{"Bill", "Billy", true},
		{"Elizabeth", "Betty", true},
		{"Elizabeth", "Liz", true},
		{"Robert", "Bob", true},
		{"John Henry", "John", true},
		{"Jane", "William", false},
		{"", "William", false},
		{"William", "", false},
	}
	for _, tt := range tests {
		if got := NamesSimilar(tt.a, tt.b); got != tt.want {
			t.Errorf("NamesSimilar(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
