package fieldmap

import (
	"strings"

	"github.com/TWRT/ghl-connector/internal/models"
)

// StripContactPrefix removes the "contact." prefix the schema listing puts
// on field keys. Upsert payloads reference keys without it.
func StripContactPrefix(fieldKey string) string {
	return strings.ReplaceAll(fieldKey, "contact.", "")
}

// KeyIndex is the set of existing remote field keys, prefix-stripped.
type KeyIndex map[string]struct{}

func BuildKeyIndex(fields []models.CustomField) KeyIndex {
	index := make(KeyIndex, len(fields))
	for _, f := range fields {
		if f.FieldKey == "" {
			continue
		}
		index[StripContactPrefix(f.FieldKey)] = struct{}{}
	}
	return index
}

// Matches reports whether any key variant of name exists in the index.
func (idx KeyIndex) Matches(name string) bool {
	for _, variant := range Variants(name) {
		if _, ok := idx[variant]; ok {
			return true
		}
	}
	return false
}

// CustomFieldNames filters payload keys down to the ones that are custom
// fields, preserving payload order and dropping duplicates.
func CustomFieldNames(payload *models.Payload) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, key := range payload.Keys() {
		if IsCoreField(key) {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, key)
	}
	return names
}
