// Package keygen produces and validates human-typeable license keys.
package keygen

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

// Alphabet excludes characters that are easy to confuse when typed from a
// printed or emailed key (no 0, O, 1, I).
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	segmentCount = 4
	segmentLen   = 4
)

// keyPattern matches PREFIX-XXXX-XXXX-XXXX-XXXX where the prefix is 4-5
// uppercase letters and each X is drawn from Alphabet.
var keyPattern = regexp.MustCompile(`^[A-Z]{4,5}(-[A-HJ-NP-Z2-9]{4}){4}$`)

// Generate returns a license key of the form PREFIX-XXXX-XXXX-XXXX-XXXX.
// Characters are drawn uniformly from Alphabet using crypto/rand; the
// caller is responsible for checking uniqueness against storage.
func Generate(prefix string) (string, error) {
	buf := make([]byte, segmentCount*segmentLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	var b strings.Builder
	b.WriteString(prefix)
	for i, c := range buf {
		if i%segmentLen == 0 {
			b.WriteByte('-')
		}
		// len(Alphabet) is 32, which divides 256, so the modulo is uniform.
		b.WriteByte(Alphabet[int(c)%len(Alphabet)])
	}
	return b.String(), nil
}

// ValidFormat reports whether key matches the license key pattern. It is a
// first-line input filter and never touches storage.
func ValidFormat(key string) bool {
	return keyPattern.MatchString(key)
}

// Normalize uppercases and trims a user-supplied key before lookup.
func Normalize(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
