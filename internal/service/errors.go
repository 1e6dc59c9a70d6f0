package service

import "errors"

// Pipeline failures that abort a webhook request. Handlers map these to
// HTTP statuses; per-field creation failures are not here because they are
// isolated and never abort the request.
var (
	ErrNoActiveCredential   = errors.New("no active company token found")
	ErrTokenRefreshFailed   = errors.New("failed to get valid access token")
	ErrMissingBusinessEmail = errors.New("business email required")
	ErrLocationNotFound     = errors.New("location not found for business email")
	ErrLocationTokenFailed  = errors.New("failed to get location access token")
	ErrSchemaFetchFailed    = errors.New("failed to fetch custom field schema")
	ErrContactUpsertFailed  = errors.New("contact upsert failed")
)
