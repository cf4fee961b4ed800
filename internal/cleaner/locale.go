package cleaner

import (
	"sort"

	"golang.org/x/text/language"

	"github.com/fulmenhq/cfops/internal/contentful"
)

// AuditLocales returns the locale codes in fields that do not parse as BCP-47
// tags, sorted and deduplicated. The scan surfaces these as warnings; nothing
// is ever mutated based on locale shape.
func AuditLocales(fields contentful.Fields) []string {
	seen := make(map[string]bool)
	for _, locales := range fields {
		for locale := range locales {
			if seen[locale] {
				continue
			}
			if _, err := language.Parse(locale); err != nil {
				seen[locale] = true
			}
		}
	}

	if len(seen) == 0 {
		return nil
	}
	bad := make([]string, 0, len(seen))
	for locale := range seen {
		bad = append(bad, locale)
	}
	sort.Strings(bad)
	return bad
}
