package team

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var ErrSlugTaken = errors.New("team slug already taken")

// Team is a club. Teams created from provider data start unmoderated.
type Team struct {
	ID          int64
	Title       string
	Slug        string
	City        string
	CountryID   *int64
	IsModerated bool
	LogoPath    string
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("team title is required")
	}
	if strings.TrimSpace(t.Slug) == "" {
		return fmt.Errorf("team slug is required")
	}
	return nil
}

// Slugify folds title into a lowercase ascii slug: "Atlético Madrid" becomes
// "atletico-madrid".
func Slugify(title string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		title,
	)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
