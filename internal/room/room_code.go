package room

import (
	"math/rand/v2"
	"strings"
)

const (
	minCodeLength     = 4
	attemptsPerLength = 100
)

// GenerateCode returns a numeric room code that is not in taken. Codes are four
// digits; a length whose attempts all collide grows the code by one digit.
func GenerateCode(taken map[string]bool) string {
	for length := minCodeLength; ; length++ {
		for range attemptsPerLength {
			if code := numericCode(length); !taken[code] {
				return code
			}
		}
	}
}

func numericCode(length int) string {
	var b strings.Builder
	b.Grow(length)
	for range length {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}
