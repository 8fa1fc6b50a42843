// Package slug turns free-text names into URL-safe, collision-free
// identifiers for categories and products.
package slug

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// maxProbes bounds uniqueness probing. Past the cap ResolveUnique falls back
// to a timestamp+random suffix so two concurrent imports sharing a base name
// can never loop indefinitely.
const maxProbes = 100

// Generate cleans text into a slug candidate: lower-cased, Latin letters,
// digits and Cyrillic letters kept, whitespace runs collapsed to single
// hyphens. Returns "" when nothing survives cleaning (pure punctuation,
// URLs after stripping, etc.) - callers fall back to Fallback.
func Generate(text string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || unicode.Is(unicode.Cyrillic, r):
			if pendingHyphen && b.Len() > 0 {
				b.WriteRune('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingHyphen = true
		}
	}
	return b.String()
}

// Fallback returns a synthetic slug for inputs that clean to empty,
// e.g. "category-1718000000000".
func Fallback(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixMilli())
}

// Synthetic returns a guaranteed-unique slug derived from base.
func Synthetic(base string) string {
	return fmt.Sprintf("%s-%d-%04d", base, time.Now().UnixMilli(), rand.Intn(10000))
}

// ResolveUnique probes exists for base, then base-1, base-2, ... up to
// maxProbes attempts, returning the first free candidate. Past the cap it
// returns a Synthetic slug without further probing.
func ResolveUnique(base string, exists func(string) (bool, error)) (string, error) {
	taken, err := exists(base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for i := 1; i <= maxProbes; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return Synthetic(base), nil
}
