package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "students_pkey"}
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "assessments_student_id_fkey"}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(fk))

	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(unique))

	// Wrapped errors still classify.
	assert.True(t, IsUniqueViolation(fmt.Errorf("save student: %w", unique)))

	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.False(t, IsForeignKeyViolation(nil))
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(pgx.ErrNoRows))
	assert.True(t, IsNoRows(fmt.Errorf("find meeting: %w", pgx.ErrNoRows)))
	assert.False(t, IsNoRows(errors.New("syntax error")))
	assert.False(t, IsNoRows(nil))
}

func TestDefaultTxOptions(t *testing.T) {
	opts := DefaultTxOptions()
	assert.Equal(t, pgx.ReadCommitted, opts.IsoLevel)
	assert.Equal(t, pgx.ReadWrite, opts.AccessMode)
}

func TestGetMigrations_VersionsAreOrderedAndUnique(t *testing.T) {
	migs := GetMigrations()
	assert.NotEmpty(t, migs)

	seen := make(map[int]struct{})
	last := 0
	for _, m := range migs {
		assert.Greater(t, m.Version, last, "versions must be strictly increasing")
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.UpSQL)
		_, dup := seen[m.Version]
		assert.False(t, dup, "duplicate version %d", m.Version)
		seen[m.Version] = struct{}{}
		last = m.Version
	}
}

func TestErrRowScanReturnsPoolError(t *testing.T) {
	row := errRow{err: ErrConnectionClosed}
	var id string
	assert.ErrorIs(t, row.Scan(&id), ErrConnectionClosed)
}
