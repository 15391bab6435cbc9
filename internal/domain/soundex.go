package domain

import "strings"

var soundexCode = map[byte]byte{
	'B': '1', 'F': '1', 'P': '1', 'V': '1',
	'C': '2', 'G': '2', 'J': '2', 'K': '2', 'Q': '2', 'S': '2', 'X': '2', 'Z': '2',
	'D': '3', 'T': '3',
	'L': '4',
	'M': '5', 'N': '5',
	'R': '6',
}

// Soundex computes the American Soundex code for a name: the first letter
// followed by three digits encoding subsequent consonant sounds. It is used
// to widen surname matching beyond exact spelling when comparing evidence
// across record sources.
func Soundex(name string) string {
	upper := strings.ToUpper(strings.TrimSpace(name))
	var letters []byte
	for i := 0; i < len(upper); i++ {
		c := upper[i]
		if c >= 'A' && c <= 'Z' {
			letters = append(letters, c)
		}
	}
	if len(letters) == 0 {
		return ""
	}

	first := letters[0]
	code := []byte{first}
	lastCode := soundexCode[first]

	for i := 1; i < len(letters) && len(code) < 4; i++ {
		c := letters[i]
		if digit, ok := soundexCode[c]; ok {
			if digit != lastCode {
				code = append(code, digit)
			}
			lastCode = digit
			continue
		}
		if c == 'H' || c == 'W' {
			// H/W never break a run of the same consonant sound.
			continue
		}
		lastCode = 0 // vowel (or Y): breaks the run
	}

	for len(code) < 4 {
		code = append(code, '0')
	}
	return string(code)
}

// SoundexMatch reports whether two names share the same Soundex code.
// Empty input on either side never matches.
func SoundexMatch(a, b string) bool {
	ca, cb := Soundex(a), Soundex(b)
	if ca == "" || cb == "" {
		return false
	}
	return ca == cb
}
