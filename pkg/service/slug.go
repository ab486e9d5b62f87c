package service

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

const (
	slugAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	slugLength   = 6
)

var reservedSlugs = map[string]bool{
	"api":      true,
	"auth":     true,
	"urls":     true,
	"health":   true,
	"admin":    true,
	"redirect": true,
	"details":  true,
	"user":     true,
}

var slugRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,50}$`)

// GenerateSlug produces a 6-character random alphanumeric candidate. The
// caller is responsible for checking uniqueness; the database unique
// constraint is the final backstop.
func GenerateSlug() (string, error) {
	max := big.NewInt(int64(len(slugAlphabet)))
	var b strings.Builder
	b.Grow(slugLength)
	for i := 0; i < slugLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(slugAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// ValidateSlug checks a caller-supplied custom slug.
func ValidateSlug(slug string) bool {
	if reservedSlugs[strings.ToLower(slug)] {
		return false
	}
	return slugRegex.MatchString(slug)
}
