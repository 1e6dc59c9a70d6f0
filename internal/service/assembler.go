package service

import (
	"github.com/TWRT/ghl-connector/internal/fieldmap"
	"github.com/TWRT/ghl-connector/internal/models"
)

// firstNonEmpty walks a fallback chain of payload keys and returns the
// first stringified value that is non-empty.
func firstNonEmpty(payload *models.Payload, keys ...string) string {
	for _, key := range keys {
		if value := payload.GetString(key); value != "" {
			return value
		}
	}
	return ""
}

// BuildContact assembles the upsert body: well-known contact attributes
// from fixed fallback chains, then one custom-field entry per resolved
// payload field. Newly created fields win over existing-schema resolution
// for the same name, and no remote key is emitted twice.
func BuildContact(payload *models.Payload, fields *FieldResult) *models.ContactUpsert {
	contact := &models.ContactUpsert{
		FirstName:  firstNonEmpty(payload, "first_name", "Rep First name"),
		LastName:   firstNonEmpty(payload, "last_name", "Rep Last name"),
		Email:      firstNonEmpty(payload, "email", "Business Email", "Representative Email"),
		Phone:      firstNonEmpty(payload, "phone", "Business Phone Number", "Representative Phone Number"),
		Address1:   firstNonEmpty(payload, "address1", "Business Address"),
		City:       payload.GetString("Business City"),
		State:      payload.GetString("Business State"),
		Country:    firstNonEmpty(payload, "country", "Business Country"),
		PostalCode: payload.GetString("Business Postal Code"),
		Timezone:   payload.GetString("timezone"),
		// the upstream form labels this key with a trailing space
		CompanyName:  firstNonEmpty(payload, "Gym Name", "Legal Business Name "),
		Website:      payload.GetString("Business website"),
		CustomFields: []models.CustomFieldValue{},
	}

	emitted := make(map[string]struct{})

	appendField := func(fieldKey, fieldName string) {
		key := fieldmap.StripContactPrefix(fieldKey)
		if key == "" {
			return
		}
		if _, dup := emitted[key]; dup {
			return
		}
		emitted[key] = struct{}{}

		value, _ := payload.Get(fieldName)
		contact.CustomFields = append(contact.CustomFields, models.CustomFieldValue{
			Key:        key,
			FieldValue: models.FormatValue(value),
		})
	}

	// newly created fields first, in payload order
	for _, name := range payload.Keys() {
		created, ok := fields.Created[name]
		if !ok {
			continue
		}
		appendField(created.CustomField.FieldKey, name)
	}

	// then matched pre-existing fields, resolved by their canonical key
	existingByKey := make(map[string]models.CustomField, len(fields.Existing.CustomFields))
	for _, f := range fields.Existing.CustomFields {
		existingByKey[f.FieldKey] = f
	}

	for _, name := range payload.Keys() {
		canonical, ok := fields.Mapped[name]
		if !ok {
			continue
		}
		if _, wasCreated := fields.Created[name]; wasCreated {
			continue
		}
		existing, ok := existingByKey["contact."+canonical]
		if !ok {
			continue
		}
		appendField(existing.FieldKey, name)
	}

	return contact
}
