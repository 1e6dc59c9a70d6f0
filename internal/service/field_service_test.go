package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/TWRT/ghl-connector/internal/cache"
	"github.com/TWRT/ghl-connector/internal/client"
	"github.com/TWRT/ghl-connector/internal/fieldmap"
	"github.com/TWRT/ghl-connector/internal/models"
)

type fakeContactAPI struct {
	schema      *models.CustomFieldList
	listErr     error
	listCalls   int
	createErrs  map[string]error
	createCalls []string
	searchID    string
	searchErr   error
	tokenErr    error
	upsertResp  *models.ContactResult
	upsertErr   error
	lastUpsert  *models.ContactUpsert
}

func (f *fakeContactAPI) SearchLocationID(accessToken, email string) (string, error) {
	return f.searchID, f.searchErr
}

func (f *fakeContactAPI) LocationToken(companyID, locationID, accessToken string) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "loc-token", nil
}

func (f *fakeContactAPI) ListCustomFields(locationToken, locationID string) (*models.CustomFieldList, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.schema == nil {
		return &models.CustomFieldList{}, nil
	}
	return f.schema, nil
}

func (f *fakeContactAPI) CreateCustomField(locationToken, locationID, name, dataType string) (*models.CreatedCustomField, error) {
	f.createCalls = append(f.createCalls, name)
	if err, ok := f.createErrs[name]; ok {
		return nil, err
	}
	return &models.CreatedCustomField{
		CustomField: models.CustomField{
			FieldKey: "contact." + fieldmap.Normalize(name),
			Name:     name,
			DataType: dataType,
		},
	}, nil
}

func (f *fakeContactAPI) UpsertContact(locationID, locationToken string, contact *models.ContactUpsert) (*models.ContactResult, error) {
	f.lastUpsert = contact
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	if f.upsertResp != nil {
		return f.upsertResp, nil
	}
	return &models.ContactResult{Contact: models.Contact{ID: "contact_1"}}, nil
}

func newFieldService(api client.ContactAPI, batchSize int) (*FieldService, *int) {
	svc := NewFieldService(api, cache.NewMemory(), 5*time.Minute, batchSize, time.Second)
	pauses := 0
	svc.sleep = func(time.Duration) { pauses++ }
	return svc, &pauses
}

func payloadWithFields(names ...string) *models.Payload {
	p := models.NewPayload()
	for _, name := range names {
		p.Set(name, "value of "+name)
	}
	return p
}

func TestProcessNoCustomFields(t *testing.T) {
	api := &fakeContactAPI{}
	svc, _ := newFieldService(api, 50)

	p := models.NewPayload()
	p.Set("email", "a@b.com")
	p.Set("first_name", "Jo")

	result, err := svc.Process(p, "tok", "loc_1")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(result.Created) != 0 || len(result.Mapped) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if api.listCalls != 0 {
		t.Errorf("schema must not be fetched when nothing is custom, got %d calls", api.listCalls)
	}
}

func TestProcessBatchingEightyFields(t *testing.T) {
	api := &fakeContactAPI{}
	svc, pauses := newFieldService(api, 50)

	names := make([]string, 80)
	for i := range names {
		names[i] = fmt.Sprintf("Survey Question %d", i)
	}

	result, err := svc.Process(payloadWithFields(names...), "tok", "loc_1")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(api.createCalls) != 80 {
		t.Errorf("expected 80 create calls, got %d", len(api.createCalls))
	}
	if *pauses != 1 {
		t.Errorf("expected exactly 1 inter-batch pause for 80 fields at batch size 50, got %d", *pauses)
	}
	if len(result.Created) != 80 {
		t.Errorf("expected 80 created fields, got %d", len(result.Created))
	}
}

func TestProcessSingleBatchNoPause(t *testing.T) {
	api := &fakeContactAPI{}
	svc, pauses := newFieldService(api, 50)

	if _, err := svc.Process(payloadWithFields("Gym Name", "Business Email"), "tok", "loc_1"); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if *pauses != 0 {
		t.Errorf("expected no pause for a single batch, got %d", *pauses)
	}
}

func TestProcessAlreadyExistsTolerated(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	api := &fakeContactAPI{
		createErrs: map[string]error{
			"Gym Name": fmt.Errorf("create field: %w", client.ErrFieldExists),
		},
	}
	svc, _ := newFieldService(api, 50)

	result, err := svc.Process(payloadWithFields("Gym Name", "Business Email"), "tok", "loc_1")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if _, ok := result.Created["Gym Name"]; ok {
		t.Error("already-existing field must not appear in the created map")
	}
	if _, ok := result.Created["Business Email"]; !ok {
		t.Error("subsequent field must still be created")
	}

	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			t.Errorf("already-exists failures must not be logged as warnings: %s", entry.Message)
		}
	}
}

func TestProcessCreateFailureIsolated(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	api := &fakeContactAPI{
		createErrs: map[string]error{
			"Broken Field": errors.New("upstream 500"),
		},
	}
	svc, _ := newFieldService(api, 50)

	result, err := svc.Process(payloadWithFields("Broken Field", "Gym Name"), "tok", "loc_1")
	if err != nil {
		t.Fatalf("a per-field failure must not abort the request: %v", err)
	}

	if _, ok := result.Created["Broken Field"]; ok {
		t.Error("failed field must not be in the created map")
	}
	if _, ok := result.Created["Gym Name"]; !ok {
		t.Error("remaining fields must still be processed")
	}

	warnings := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings++
		}
	}
	if warnings != 1 {
		t.Errorf("expected exactly 1 warning for the failed field, got %d", warnings)
	}
}

func TestProcessMatchedFieldNotCreated(t *testing.T) {
	api := &fakeContactAPI{
		schema: &models.CustomFieldList{CustomFields: []models.CustomField{
			{FieldKey: "contact.business_email", Name: "Business Email", DataType: "TEXT"},
		}},
	}
	svc, _ := newFieldService(api, 50)

	result, err := svc.Process(payloadWithFields("Business Email", "Gym Name"), "tok", "loc_1")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	for _, name := range api.createCalls {
		if name == "Business Email" {
			t.Error("matched field must not be created")
		}
	}
	if _, ok := result.Created["Gym Name"]; !ok {
		t.Error("unmatched field must be created")
	}
	if result.Mapped["Business Email"] != "business_email" {
		t.Errorf("matched field must still be in the mapping, got %v", result.Mapped)
	}
}

func TestProcessSchemaFetchFailure(t *testing.T) {
	api := &fakeContactAPI{listErr: errors.New("boom")}
	svc, _ := newFieldService(api, 50)

	if _, err := svc.Process(payloadWithFields("Gym Name"), "tok", "loc_1"); !errors.Is(err, ErrSchemaFetchFailed) {
		t.Fatalf("expected ErrSchemaFetchFailed, got %v", err)
	}
}

func TestProcessSchemaCaching(t *testing.T) {
	api := &fakeContactAPI{
		schema: &models.CustomFieldList{CustomFields: []models.CustomField{
			{FieldKey: "contact.gym_name"},
		}},
	}
	svc, _ := newFieldService(api, 50)

	// everything matches, so nothing is created and the cache stays warm
	if _, err := svc.Process(payloadWithFields("Gym Name"), "tok", "loc_1"); err != nil {
		t.Fatalf("first Process: %v", err)
	}
	if _, err := svc.Process(payloadWithFields("Gym Name"), "tok", "loc_1"); err != nil {
		t.Fatalf("second Process: %v", err)
	}
	if api.listCalls != 1 {
		t.Errorf("expected 1 schema fetch with warm cache, got %d", api.listCalls)
	}
}

func TestProcessCacheInvalidatedAfterCreation(t *testing.T) {
	api := &fakeContactAPI{}
	svc, _ := newFieldService(api, 50)

	// first request creates a field, which must invalidate the cache
	if _, err := svc.Process(payloadWithFields("Gym Name"), "tok", "loc_1"); err != nil {
		t.Fatalf("first Process: %v", err)
	}
	if _, err := svc.Process(payloadWithFields("Business Email"), "tok", "loc_1"); err != nil {
		t.Fatalf("second Process: %v", err)
	}
	if api.listCalls != 2 {
		t.Errorf("expected schema refetch after field creation, got %d calls", api.listCalls)
	}
}
