package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mehtaphysical/stripe-pay-sandbox/internal/model"
)

const (
	maxEmailLength = 1024
	maxPhoneLength = 30
)

// Combines all needed interfaces
type DB interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
}

type ContactRepository struct {
	db DB
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{db: pool}
}

func validEmail(email string) bool {
	return email != "" && len(email) < maxEmailLength
}

func validPhone(phone string) bool {
	return phone != "" && len(phone) < maxPhoneLength
}

// Upsert stores contact info keyed by account id. Fields failing validation
// are dropped, not rejected; an existing value is never overwritten with a
// bad one.
func (r *ContactRepository) Upsert(ctx context.Context, accountID string, contact model.Contact) error {
	var (
		fields = []string{"account_id"}
		values = []interface{}{accountID}
		params = []string{"$1"}
		pos    = 2 // PostgreSQL parameter position counter
	)

	if validEmail(contact.Email) {
		fields = append(fields, "email")
		values = append(values, contact.Email)
		params = append(params, fmt.Sprintf("$%d", pos))
		pos++
	}

	if validPhone(contact.Phone) {
		fields = append(fields, "phone")
		values = append(values, contact.Phone)
		params = append(params, fmt.Sprintf("$%d", pos))
		pos++
	}

	var updates []string
	for _, f := range fields[1:] {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", f, f))
	}

	conflict := "DO NOTHING"
	if len(updates) > 0 {
		conflict = fmt.Sprintf("DO UPDATE SET %s, updated_at = NOW()", strings.Join(updates, ", "))
	}

	query := fmt.Sprintf(`
        INSERT INTO contacts (%s)
        VALUES (%s)
        ON CONFLICT (account_id) %s`,
		strings.Join(fields, ", "),
		strings.Join(params, ", "),
		conflict,
	)

	if _, err := r.db.Exec(ctx, query, values...); err != nil {
		return fmt.Errorf("failed to upsert contact: %w", err)
	}
	return nil
}

// FindByAccount returns the stored contact, or nil when none exists.
func (r *ContactRepository) FindByAccount(ctx context.Context, accountID string) (*model.Contact, error) {
	sql := `SELECT COALESCE(email, ''), COALESCE(phone, '') FROM contacts WHERE account_id = $1`
	var contact model.Contact
	err := r.db.QueryRow(ctx, sql, accountID).Scan(&contact.Email, &contact.Phone)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting contact: %w", err)
	}
	return &contact, nil
}
