package fieldmap

// coreFields are the reserved contact attributes GHL populates itself.
// Payload keys matching one of these (exact, case-sensitive) are never
// treated as custom fields.
var coreFields = map[string]struct{}{
	"contact_id":         {},
	"first_name":         {},
	"last_name":          {},
	"full_name":          {},
	"email":              {},
	"phone":              {},
	"tags":               {},
	"address1":           {},
	"city":               {},
	"state":              {},
	"postal_code":        {},
	"country":            {},
	"timezone":           {},
	"date_created":       {},
	"contact_source":     {},
	"full_address":       {},
	"contact_type":       {},
	"location":           {},
	"triggerData":        {},
	"contact":            {},
	"attributionSource":  {},
	"Card authorization": {},
	"workflow":           {},
}

// IsCoreField reports whether name is a reserved contact attribute.
func IsCoreField(name string) bool {
	_, ok := coreFields[name]
	return ok
}
