package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehtaphysical/stripe-pay-sandbox/internal/model"
)

type execRecorder struct {
	query string
	args  []any
}

func (r *execRecorder) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (r *execRecorder) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (r *execRecorder) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.query = sql
	r.args = args
	return pgconn.CommandTag{}, nil
}

func TestUpsertStoresValidFields(t *testing.T) {
	rec := &execRecorder{}
	repo := &ContactRepository{db: rec}

	err := repo.Upsert(context.Background(), "alice.testnet", model.Contact{
		Email: "alice@example.com",
		Phone: "+15550100",
	})
	require.NoError(t, err)

	assert.Contains(t, rec.query, "INSERT INTO contacts")
	assert.Contains(t, rec.query, "email")
	assert.Contains(t, rec.query, "phone")
	assert.Contains(t, rec.query, "ON CONFLICT (account_id) DO UPDATE")
	assert.Equal(t, []any{"alice.testnet", "alice@example.com", "+15550100"}, rec.args)
}

func TestUpsertDropsInvalidFields(t *testing.T) {
	rec := &execRecorder{}
	repo := &ContactRepository{db: rec}

	err := repo.Upsert(context.Background(), "alice.testnet", model.Contact{
		Email: strings.Repeat("a", 1024) + "@example.com", // over the limit
		Phone: "+15550100",
	})
	require.NoError(t, err)

	assert.NotContains(t, rec.query, "email")
	assert.Contains(t, rec.query, "phone")
	assert.Equal(t, []any{"alice.testnet", "+15550100"}, rec.args)
}

func TestUpsertWithNoValidFieldsStillRecordsAccount(t *testing.T) {
	rec := &execRecorder{}
	repo := &ContactRepository{db: rec}

	err := repo.Upsert(context.Background(), "alice.testnet", model.Contact{})
	require.NoError(t, err)

	assert.Contains(t, rec.query, "ON CONFLICT (account_id) DO NOTHING")
	assert.Equal(t, []any{"alice.testnet"}, rec.args)
}

func TestFieldValidation(t *testing.T) {
	assert.True(t, validEmail("alice@example.com"))
	assert.False(t, validEmail(""))
	assert.False(t, validEmail(strings.Repeat("a", 1024)))

	assert.True(t, validPhone("+15550100"))
	assert.False(t, validPhone(""))
	assert.False(t, validPhone(strings.Repeat("1", 30)))
}
