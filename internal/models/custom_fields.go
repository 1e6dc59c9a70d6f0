package models

// CustomField is a field definition as the schema listing returns it. The
// remote list prefixes FieldKey with "contact."; upsert payloads use it
// unprefixed.
type CustomField struct {
	ID       string `json:"id"`
	FieldKey string `json:"fieldKey"`
	Name     string `json:"name"`
	DataType string `json:"dataType"`
}

type CustomFieldList struct {
	CustomFields []CustomField `json:"customFields"`
}

// CreatedCustomField wraps the create endpoint's response.
type CreatedCustomField struct {
	CustomField CustomField `json:"customField"`
}
