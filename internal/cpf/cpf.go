// Package cpf validates and formats Brazilian individual taxpayer numbers
// (CPF).  Numbers are handled in canonical form: exactly 11 ASCII digits with
// no punctuation.
package cpf

import "strings"

// Length is the number of digits in a canonical CPF.
const Length = 11

// Normalize strips everything except ASCII digits, so "111.444.777-35"
// becomes "11144477735".
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Valid reports whether digits is a canonical CPF with both check digits
// correct.  Sequences of one repeated digit pass the checksum arithmetic but
// are not issued, so they are rejected.
func Valid(digits string) bool {
	if len(digits) != Length {
		return false
	}
	var d [Length]int
	same := true
	for i := 0; i < Length; i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d[i] = int(c - '0')
		if d[i] != d[0] {
			same = false
		}
	}
	if same {
		return false
	}
	return checkDigit(d[:9]) == d[9] && checkDigit(d[:10]) == d[10]
}

// checkDigit computes the verifier for the given prefix: weights run from
// len(prefix)+1 down to 2, and a remainder of 10 collapses to 0.
func checkDigit(prefix []int) int {
	sum := 0
	weight := len(prefix) + 1
	for _, v := range prefix {
		sum += v * weight
		weight--
	}
	r := (sum * 10) % 11
	if r == 10 {
		r = 0
	}
	return r
}

// Format renders a canonical CPF as 000.000.000-00.  Input that is not 11
// digits is returned unchanged.
func Format(digits string) string {
	if len(digits) != Length {
		return digits
	}
	return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11]
}
