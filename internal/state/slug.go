package state

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	maxSlugLen     = 48
	slugDigestHex  = 12
	slugSeparators = "-"
)

// Target is one monitored page plus its derived storage identifier.
type Target struct {
	URL  string
	Slug string
}

func NewTarget(rawURL string) Target {
	return Target{URL: rawURL, Slug: SlugFor(rawURL)}
}

// SlugFor derives a stable, human-inspectable, storage-safe token from a
// URL. Oversized naive slugs are truncated and suffixed with a digest of
// the full URL so long URLs sharing a prefix stay distinguishable.
func SlugFor(rawURL string) string {
	s := rawURL
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	s = strings.ToLower(s)

	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteString(slugSeparators)
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), slugSeparators)
	if slug == "" {
		slug = "target"
	}
	if len(slug) <= maxSlugLen {
		return slug
	}

	sum := sha256.Sum256([]byte(rawURL))
	return slug[:maxSlugLen] + "-" + hex.EncodeToString(sum[:])[:slugDigestHex]
}
