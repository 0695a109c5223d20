package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
)

func TestClassifyError(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", Detail: "Key (name)=(picking) already exists."}
	fk := &pgconn.PgError{Code: "23503", Detail: "Key (warehouse_id)=(9) is not present in table \"warehouse\"."}
	check := &pgconn.PgError{Code: "23514", ConstraintName: "input_demand_demand_check"}
	other := errors.New("connection reset")

	assert.ErrorIs(t, ClassifyError(unique), apperrors.ErrConflict)
	assert.ErrorIs(t, ClassifyError(fmt.Errorf("insert: %w", unique)), apperrors.ErrConflict)
	assert.ErrorIs(t, ClassifyError(fk), apperrors.ErrInvalidInput)
	assert.ErrorIs(t, ClassifyError(check), apperrors.ErrInvalidInput)
	assert.Contains(t, ClassifyError(check).Error(), "input_demand_demand_check")
	assert.Equal(t, other, ClassifyError(other))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
}
