package fieldmap

import (
	"regexp"
	"strings"
)

var (
	separatorReplacer = strings.NewReplacer(
		" ", "_", `"`, "_", "/", "_", "(", "_", ")", "_", "-", "_", "?", "_", ":", "_",
	)

	nonKeyChars    = regexp.MustCompile(`[^a-z0-9_]`)
	underscoreRuns = regexp.MustCompile(`_+`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	nonAlnumSpace  = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	nonAlnum       = regexp.MustCompile(`[^a-zA-Z0-9]`)
	nonWordSpace   = regexp.MustCompile(`[^\w\s]`)
	nonLowerAlnum  = regexp.MustCompile(`[^a-z0-9]`)
	parenthesized  = regexp.MustCompile(`\([^)]*\)`)
	slashBackslash = strings.NewReplacer("/", "", `\`, "")
)

// Normalize produces the canonical field key for a field name: lowercase,
// separators to underscores, everything else outside [a-z0-9_] dropped,
// underscore runs collapsed, edges trimmed.
func Normalize(name string) string {
	key := strings.ToLower(name)
	key = separatorReplacer.Replace(key)
	key = nonKeyChars.ReplaceAllString(key, "")
	key = underscoreRuns.ReplaceAllString(key, "_")
	return strings.Trim(key, "_")
}

// collapseToKey turns a cleaned-up name into underscore form: whitespace
// runs become single underscores, underscore runs collapse, edges trim.
func collapseToKey(s string) string {
	key := whitespaceRuns.ReplaceAllString(strings.TrimSpace(s), "_")
	key = strings.Trim(key, "_")
	return underscoreRuns.ReplaceAllString(key, "_")
}

// variantStrategies is the ordered list of key-generation rules tried when
// matching a field name against the remote schema. Field keys created by
// earlier versions of the upstream integrations were normalized slightly
// differently, so a single canonical form misses fields that do exist.
var variantStrategies = []func(name string) []string{
	func(name string) []string {
		return []string{Normalize(name)}
	},
	// strip punctuation but keep spaces, then spaces to underscores
	func(name string) []string {
		clean := strings.ToLower(nonAlnumSpace.ReplaceAllString(name, ""))
		return []string{whitespaceRuns.ReplaceAllString(strings.TrimSpace(clean), "_")}
	},
	// alphanumerics only, no separators at all
	func(name string) []string {
		return []string{strings.ToLower(nonAlnum.ReplaceAllString(name, ""))}
	},
	// slash-bearing names: variants with the slashes deleted outright
	func(name string) []string {
		if !strings.Contains(name, "/") {
			return nil
		}
		lower := strings.ToLower(name)
		noSlashes := strings.ReplaceAll(lower, "/", "")
		return []string{
			whitespaceRuns.ReplaceAllString(strings.TrimSpace(noSlashes), "_"),
			nonAlnum.ReplaceAllString(lower, ""),
		}
	},
	// parenthesized substrings dropped, e.g. "Revenue ($)" -> "revenue"
	func(name string) []string {
		if !strings.Contains(name, "(") {
			return nil
		}
		noParens := parenthesized.ReplaceAllString(name, "")
		return []string{Normalize(strings.TrimSpace(noParens))}
	},
	// legacy "Drill-Down" fields were keyed as "drilldown"
	func(name string) []string {
		if !strings.Contains(name, "Drill-Down") {
			return nil
		}
		return []string{Normalize(strings.ReplaceAll(name, "Drill-Down", "drilldown"))}
	},
	func(name string) []string {
		if !strings.Contains(name, ":") {
			return nil
		}
		return []string{Normalize(strings.ReplaceAll(name, ":", ""))}
	},
	// generic sweep: slash removal, punctuation removal, alphanumeric-only
	func(name string) []string {
		lower := strings.ToLower(name)
		variants := make([]string, 0, 3)
		for _, cleaned := range []string{
			slashBackslash.Replace(lower),
			nonWordSpace.ReplaceAllString(lower, ""),
			nonLowerAlnum.ReplaceAllString(lower, ""),
		} {
			if key := collapseToKey(cleaned); key != "" {
				variants = append(variants, key)
			}
		}
		return variants
	},
}

// Variants returns every candidate key for a field name, deduplicated in
// generation order with empties dropped. Any variant matching an existing
// remote key counts as a match; there is no priority among them.
func Variants(name string) []string {
	seen := make(map[string]struct{})
	var variants []string
	for _, strategy := range variantStrategies {
		for _, v := range strategy(name) {
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			variants = append(variants, v)
		}
	}
	return variants
}
