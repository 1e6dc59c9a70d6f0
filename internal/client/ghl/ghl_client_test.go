package ghl

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TWRT/ghl-connector/internal/client"
	"github.com/TWRT/ghl-connector/internal/models"
)

func TestSearchLocationID(t *testing.T) {
	var gotAuth, gotVersion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Version")
		if r.URL.Path != "/locations/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("email") != "a@b.com" {
			t.Errorf("unexpected email query %q", r.URL.Query().Get("email"))
		}
		w.Write([]byte(`{"locations":[{"id":"loc_1","name":"Acme"}]}`))
	}))
	defer server.Close()

	c := NewGHLClient(server.URL, "2021-07-28")
	id, err := c.SearchLocationID("tok", "a@b.com")
	if err != nil {
		t.Fatalf("SearchLocationID: %v", err)
	}
	if id != "loc_1" {
		t.Errorf("expected loc_1, got %q", id)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
	if gotVersion != "2021-07-28" {
		t.Errorf("expected version header, got %q", gotVersion)
	}
}

func TestSearchLocationIDEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"locations":[]}`))
	}))
	defer server.Close()

	c := NewGHLClient(server.URL, "2021-07-28")
	id, err := c.SearchLocationID("tok", "a@b.com")
	if err != nil {
		t.Fatalf("an empty search is not an error: %v", err)
	}
	if id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
}

func TestLocationToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/locationToken" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected content type %q", ct)
		}
		r.ParseForm()
		if r.PostForm.Get("companyId") != "comp_1" || r.PostForm.Get("locationId") != "loc_1" {
			t.Errorf("unexpected form: %v", r.PostForm)
		}
		w.Write([]byte(`{"access_token":"loc-tok","expires_in":86400}`))
	}))
	defer server.Close()

	c := NewGHLClient(server.URL, "2021-07-28")
	token, err := c.LocationToken("comp_1", "loc_1", "agency-tok")
	if err != nil {
		t.Fatalf("LocationToken: %v", err)
	}
	if token != "loc-tok" {
		t.Errorf("expected loc-tok, got %q", token)
	}
}

func TestListCustomFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/locations/loc_1/customFields" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"customFields":[{"id":"f1","fieldKey":"contact.gym_name","name":"Gym Name","dataType":"TEXT"}]}`))
	}))
	defer server.Close()

	c := NewGHLClient(server.URL, "2021-07-28")
	list, err := c.ListCustomFields("tok", "loc_1")
	if err != nil {
		t.Fatalf("ListCustomFields: %v", err)
	}
	if len(list.CustomFields) != 1 || list.CustomFields[0].FieldKey != "contact.gym_name" {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestCreateCustomField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["name"] != "Gym Name" || body["dataType"] != "TEXT" || body["model"] != "contact" {
			t.Errorf("unexpected body: %v", body)
		}
		w.Write([]byte(`{"customField":{"id":"f1","fieldKey":"contact.gym_name","name":"Gym Name","dataType":"TEXT"}}`))
	}))
	defer server.Close()

	c := NewGHLClient(server.URL, "2021-07-28")
	created, err := c.CreateCustomField("tok", "loc_1", "Gym Name", "TEXT")
	if err != nil {
		t.Fatalf("CreateCustomField: %v", err)
	}
	if created.CustomField.FieldKey != "contact.gym_name" {
		t.Errorf("unexpected created field: %+v", created)
	}
}

func TestCreateCustomFieldAlreadyExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Custom field with name Gym Name already exists","statusCode":400}`))
	}))
	defer server.Close()

	c := NewGHLClient(server.URL, "2021-07-28")
	_, err := c.CreateCustomField("tok", "loc_1", "Gym Name", "TEXT")
	if !errors.Is(err, client.ErrFieldExists) {
		t.Fatalf("expected ErrFieldExists, got %v", err)
	}
}

func TestUpsertContactMergesLocationID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contacts/upsert" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["locationId"] != "loc_1" {
			t.Errorf("locationId missing from upsert body: %v", body)
		}
		w.Write([]byte(`{"contact":{"id":"contact_1","email":"a@b.com"},"new":true}`))
	}))
	defer server.Close()

	c := NewGHLClient(server.URL, "2021-07-28")
	result, err := c.UpsertContact("loc_1", "tok", &models.ContactUpsert{Email: "a@b.com"})
	if err != nil {
		t.Fatalf("UpsertContact: %v", err)
	}
	if result.Contact.ID != "contact_1" || !result.New {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestErrorMessageArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":["name should not be empty","dataType must be valid"],"statusCode":422}`))
	}))
	defer server.Close()

	c := NewGHLClient(server.URL, "2021-07-28")
	_, err := c.ListCustomFields("tok", "loc_1")
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "name should not be empty"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q should carry %q", err, want)
	}
}
