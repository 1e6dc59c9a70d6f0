package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TWRT/ghl-connector/internal/cache"
	"github.com/TWRT/ghl-connector/internal/client"
	"github.com/TWRT/ghl-connector/internal/fieldmap"
	"github.com/TWRT/ghl-connector/internal/models"
)

// FieldResult is everything the contact assembler needs: the schema the
// matching ran against, the canonical key for every custom payload field,
// and the fields created during this request.
type FieldResult struct {
	Created  map[string]models.CreatedCustomField
	Existing *models.CustomFieldList
	Mapped   map[string]string
}

func (r *FieldResult) CreatedCount() int {
	return len(r.Created)
}

// FieldService reconciles payload field names against a location's custom
// field schema and creates the missing ones.
type FieldService struct {
	api         client.ContactAPI
	schemaCache cache.Cache
	cacheTTL    time.Duration
	batchSize   int
	batchDelay  time.Duration
	sleep       func(time.Duration)
}

func NewFieldService(api client.ContactAPI, schemaCache cache.Cache, cacheTTL time.Duration, batchSize int, batchDelay time.Duration) *FieldService {
	return &FieldService{
		api:         api,
		schemaCache: schemaCache,
		cacheTTL:    cacheTTL,
		batchSize:   batchSize,
		batchDelay:  batchDelay,
		sleep:       time.Sleep,
	}
}

func schemaCacheKey(locationID string) string {
	return "custom_fields_" + locationID
}

// Process runs the reconciliation: filter custom fields, match against the
// remote schema, create whatever is genuinely missing.
func (s *FieldService) Process(payload *models.Payload, locationToken, locationID string) (*FieldResult, error) {
	result := &FieldResult{
		Created: make(map[string]models.CreatedCustomField),
		Mapped:  make(map[string]string),
	}

	customNames := fieldmap.CustomFieldNames(payload)
	if len(customNames) == 0 {
		result.Existing = &models.CustomFieldList{}
		return result, nil
	}

	logrus.WithFields(logrus.Fields{
		"location_id":  locationID,
		"total_fields": len(customNames),
	}).Info("Processing custom fields")

	schema, err := s.fetchSchema(locationToken, locationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSchemaFetchFailed, err)
	}
	result.Existing = schema

	for _, name := range customNames {
		result.Mapped[name] = fieldmap.Normalize(name)
	}

	index := fieldmap.BuildKeyIndex(schema.CustomFields)

	var unmatched []string
	matched := 0
	for _, name := range customNames {
		if index.Matches(name) {
			matched++
			continue
		}
		unmatched = append(unmatched, name)
	}

	if len(unmatched) > 0 {
		logrus.WithFields(logrus.Fields{
			"location_id":     locationID,
			"matched_count":   matched,
			"unmatched_count": len(unmatched),
		}).Info("Unmatched fields found")
	}

	result.Created = s.createBatch(unmatched, locationToken, locationID)

	if len(result.Created) > 0 {
		s.schemaCache.Invalidate(schemaCacheKey(locationID))
	}

	return result, nil
}

func (s *FieldService) fetchSchema(locationToken, locationID string) (*models.CustomFieldList, error) {
	key := schemaCacheKey(locationID)
	if cached, ok := s.schemaCache.Get(key); ok {
		if schema, ok := cached.(*models.CustomFieldList); ok {
			return schema, nil
		}
	}

	schema, err := s.api.ListCustomFields(locationToken, locationID)
	if err != nil {
		return nil, err
	}

	s.schemaCache.Set(key, schema, s.cacheTTL)
	return schema, nil
}

// createBatch creates unmatched fields in fixed-size batches, pausing
// between batches to respect the remote rate limit. A single field failing
// never aborts the batch; duplicate-field races are swallowed entirely.
func (s *FieldService) createBatch(unmatched []string, locationToken, locationID string) map[string]models.CreatedCustomField {
	created := make(map[string]models.CreatedCustomField)
	if len(unmatched) == 0 {
		return created
	}

	batches := chunk(unmatched, s.batchSize)

	logrus.WithFields(logrus.Fields{
		"location_id":  locationID,
		"total_fields": len(unmatched),
		"batches":      len(batches),
	}).Info("Creating custom fields")

	for i, batch := range batches {
		for _, name := range batch {
			field, err := s.api.CreateCustomField(locationToken, locationID, name, "TEXT")
			if err != nil {
				if !errors.Is(err, client.ErrFieldExists) {
					logrus.WithFields(logrus.Fields{
						"location_id": locationID,
						"field":       name,
						"error":       err.Error(),
					}).Warn("Failed to create custom field")
				}
				continue
			}
			if field != nil && field.CustomField.FieldKey != "" {
				created[name] = *field
			}
		}

		if i < len(batches)-1 {
			s.sleep(s.batchDelay)
		}
	}

	if len(created) > 0 {
		logrus.WithFields(logrus.Fields{
			"location_id": locationID,
			"count":       len(created),
		}).Info("Custom fields created successfully")
	}

	return created
}

func chunk(items []string, size int) [][]string {
	if size <= 0 {
		return [][]string{items}
	}
	var batches [][]string
	for len(items) > size {
		batches = append(batches, items[:size])
		items = items[size:]
	}
	return append(batches, items)
}
