package preference

import "strings"

// NormalizeKey canonicalizes a free-text category label: lowercase, trimmed,
// runs of whitespace and dots collapsed to a single underscore, anything
// else outside [a-z0-9_] dropped. "Senior Software Engineer" and
// "senior.software_engineer!!" both yield "senior_software_engineer".
// Returns "" when nothing usable remains.
func NormalizeKey(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(v))
	lastUnderscore := true // suppress a leading underscore
	for _, r := range v {
		switch {
		case r == '.' || r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = r == '_'
		default:
			// other symbols dropped
		}
	}
	return strings.Trim(b.String(), "_")
}
