package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CompanyToken is one company-level OAuth credential. Rows are created on
// install, overwritten in place on refresh, and toggled inactive on
// uninstall; they are never deleted.
type CompanyToken struct {
	ID           int64
	CompanyID    string
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	TokenType    string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var ErrTokenNotFound = errors.New("company token not found")

type CompanyTokenRepository struct {
	db *sql.DB
}

func NewCompanyTokenRepository(db *sql.DB) *CompanyTokenRepository {
	return &CompanyTokenRepository{db: db}
}

const tokenColumns = `id, company_id, access_token, refresh_token, expires_at, token_type, active_status, created_at, updated_at`

func scanToken(row *sql.Row) (CompanyToken, error) {
	var t CompanyToken
	var refreshToken sql.NullString
	var expiresAt sql.NullTime
	var active int

	err := row.Scan(
		&t.ID,
		&t.CompanyID,
		&t.AccessToken,
		&refreshToken,
		&expiresAt,
		&t.TokenType,
		&active,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return CompanyToken{}, err
	}

	t.RefreshToken = refreshToken.String
	if expiresAt.Valid {
		at := expiresAt.Time
		t.ExpiresAt = &at
	}
	t.Active = active != 0
	return t, nil
}

func (r *CompanyTokenRepository) FindByCompanyID(companyID string) (CompanyToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM company_tokens WHERE company_id = ?`
	token, err := scanToken(r.db.QueryRow(query, companyID))
	if errors.Is(err, sql.ErrNoRows) {
		return CompanyToken{}, ErrTokenNotFound
	}
	if err != nil {
		return CompanyToken{}, fmt.Errorf("find token for company %s: %w", companyID, err)
	}
	return token, nil
}

// FindActive returns the single active credential. The system assumes at
// most one row is active at a time.
func (r *CompanyTokenRepository) FindActive() (CompanyToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM company_tokens WHERE active_status = 1 ORDER BY id LIMIT 1`
	token, err := scanToken(r.db.QueryRow(query))
	if errors.Is(err, sql.ErrNoRows) {
		return CompanyToken{}, ErrTokenNotFound
	}
	if err != nil {
		return CompanyToken{}, fmt.Errorf("find active token: %w", err)
	}
	return token, nil
}

// Upsert inserts the credential or replaces the stored token material for
// an existing company. No history is kept.
func (r *CompanyTokenRepository) Upsert(token *CompanyToken) error {
	query := `
	INSERT INTO company_tokens (company_id, access_token, refresh_token, expires_at, token_type, active_status)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(company_id) DO UPDATE SET
		access_token = excluded.access_token,
		refresh_token = excluded.refresh_token,
		expires_at = excluded.expires_at,
		token_type = excluded.token_type,
		active_status = excluded.active_status,
		updated_at = CURRENT_TIMESTAMP
	`

	var refreshToken any
	if token.RefreshToken != "" {
		refreshToken = token.RefreshToken
	}
	var expiresAt any
	if token.ExpiresAt != nil {
		expiresAt = token.ExpiresAt.UTC()
	}
	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	active := 0
	if token.Active {
		active = 1
	}

	_, err := r.db.Exec(query,
		token.CompanyID,
		token.AccessToken,
		refreshToken,
		expiresAt,
		tokenType,
		active,
	)
	if err != nil {
		return fmt.Errorf("upsert token for company %s: %w", token.CompanyID, err)
	}
	return nil
}

func (r *CompanyTokenRepository) SetActive(companyID string, active bool) error {
	value := 0
	if active {
		value = 1
	}
	result, err := r.db.Exec(
		`UPDATE company_tokens SET active_status = ?, updated_at = CURRENT_TIMESTAMP WHERE company_id = ?`,
		value, companyID,
	)
	if err != nil {
		return fmt.Errorf("set active status for company %s: %w", companyID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTokenNotFound
	}
	return nil
}
