package cpf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var validNumbers = []string{
	"11144477735",
	"52998224725",
	"12345678909",
	"98765432100",
	"39053344705",
	"00000000191",
	"93541134780",
	"24681357928",
}

func TestValid_AcceptsChecksumConsistentNumbers(t *testing.T) {
	for _, n := range validNumbers {
		assert.Truef(t, Valid(n), "expected %s to be valid", n)
	}
}

// mutationSafe lists valid numbers for which no single-digit change yields
// another valid number.  Numbers whose check digit is 0 can collide, because
// a remainder of 10 also maps to 0 (e.g. 12345678909 and 22345678909).
var mutationSafe = []string{
	"11144477735",
	"52998224725",
	"00000000191",
	"93541134780",
	"24681357928",
}

func TestValid_RejectsEverySingleDigitMutation(t *testing.T) {
	for _, n := range mutationSafe {
		for pos := 0; pos < Length; pos++ {
			for delta := byte(1); delta <= 9; delta++ {
				b := []byte(n)
				b[pos] = '0' + (b[pos]-'0'+delta)%10
				mutated := string(b)
				assert.Falsef(t, Valid(mutated), "mutation %s of %s at %d accepted", mutated, n, pos)
			}
		}
	}
}

func TestValid_RejectsRepeatedDigits(t *testing.T) {
	for c := '0'; c <= '9'; c++ {
		n := strings.Repeat(string(c), Length)
		assert.Falsef(t, Valid(n), "expected %s to be rejected", n)
	}
}

func TestValid_RejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"short":     "1114447773",
		"long":      "111444777350",
		"formatted": "111.444.777-35",
		"letters":   "1114447773a",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, Valid(in))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "11144477735", Normalize("111.444.777-35"))
	assert.Equal(t, "11144477735", Normalize(" 111 444 777 35 "))
	assert.Equal(t, "", Normalize("abc"))
	assert.True(t, Valid(Normalize("529.982.247-25")))
}

func TestValid_CheckDigitZeroCollision(t *testing.T) {
	assert.True(t, Valid("12345678909"))
	assert.True(t, Valid("22345678909"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "111.444.777-35", Format("11144477735"))
	assert.Equal(t, "123", Format("123"))
}
