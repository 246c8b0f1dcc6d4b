package utils

import (
	"strings"

	"github.com/google/uuid"
)

// Slugify lowercases s and keeps only letters, digits and single dashes
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// UniqueSlug appends a short random suffix so equal titles never collide
func UniqueSlug(title string) string {
	base := Slugify(title)
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
