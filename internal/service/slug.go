package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

type slugChecker func(ctx context.Context, slug string) (bool, error)

// slugify lowercases the title and collapses everything that is not a
// letter or digit into single hyphens.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// uniqueSlug appends a numeric suffix until the slug is free.
func uniqueSlug(ctx context.Context, base string, exists slugChecker) (string, error) {
	if base == "" {
		base = "untitled"
	}

	slug := base
	for i := 2; ; i++ {
		taken, err := exists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
