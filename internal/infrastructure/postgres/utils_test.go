package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sylistock-api/internal/domain"
)

func TestPgErrorCodes(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	lock := fmt.Errorf("select: %w", &pgconn.PgError{Code: "55P03"})
	other := errors.New("conexión cerrada")

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isUniqueViolation(other))
	assert.True(t, isLockNotAvailable(lock))
	assert.False(t, isLockNotAvailable(unique))
	assert.True(t, isInvalidText(fmt.Errorf("select: %w", &pgconn.PgError{Code: "22P02"})))
	assert.False(t, isInvalidText(other))
}

func TestLockErr(t *testing.T) {
	assert.ErrorIs(t, lockErr("lock stock item", &pgconn.PgError{Code: "55P03"}), domain.ErrLockTimeout)

	err := lockErr("lock stock item", errors.New("boom"))
	assert.NotErrorIs(t, err, domain.ErrLockTimeout)
	assert.Contains(t, err.Error(), "lock stock item")
}

// badIDQuerier responde como PostgreSQL ante un id que no es UUID.
type badIDQuerier struct{}

var errBadUUID = &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "m-fantasma"`}

func (badIDQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errBadUUID
}

func (badIDQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errBadUUID
}

func (badIDQuerier) QueryRow(context.Context, string, ...any) pgx.Row { return errRow{errBadUUID} }

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func TestMerchantRepo_IDNoUUIDEsInexistente(t *testing.T) {
	ctx := context.Background()
	merchants := NewMerchantRepository(badIDQuerier{})

	m, err := merchants.GetByID(ctx, "m-fantasma")
	require.NoError(t, err)
	assert.Nil(t, m)

	assert.ErrorIs(t, merchants.UpdateScore(ctx, "m-fantasma", decimal.Zero), domain.ErrMerchantNotFound)
	assert.ErrorIs(t, merchants.UpdateAlertThreshold(ctx, "m-fantasma", 3), domain.ErrMerchantNotFound)

	v, err := NewVerificationRepository(badIDQuerier{}).Latest(ctx, "m-fantasma")
	require.NoError(t, err)
	assert.Nil(t, v)
}
