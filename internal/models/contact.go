package models

// CustomFieldValue is one key/value pair in a contact upsert. Keys are the
// remote fieldKey with the "contact." prefix stripped.
type CustomFieldValue struct {
	Key        string `json:"key"`
	FieldValue string `json:"field_value"`
}

// ContactUpsert is the body posted to the contacts upsert endpoint. The
// client merges LocationID in before sending.
type ContactUpsert struct {
	LocationID   string             `json:"locationId,omitempty"`
	FirstName    string             `json:"firstName"`
	LastName     string             `json:"lastName"`
	Email        string             `json:"email"`
	Phone        string             `json:"phone"`
	Address1     string             `json:"address1"`
	City         string             `json:"city"`
	State        string             `json:"state"`
	Country      string             `json:"country"`
	PostalCode   string             `json:"postalCode"`
	Timezone     string             `json:"timezone"`
	CompanyName  string             `json:"companyName"`
	Website      string             `json:"website"`
	CustomFields []CustomFieldValue `json:"customFields"`
}

type Contact struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type ContactResult struct {
	Contact Contact `json:"contact"`
	New     bool    `json:"new"`
}
