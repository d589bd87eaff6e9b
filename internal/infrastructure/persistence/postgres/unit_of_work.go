package postgres

import (
	"context"
	"fmt"

	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK
// Transactional boundary over the student and record repositories. Used by
// write-side handlers that touch the card and its records together, e.g.
// recording an assessment and applying the academic rollup.
// ══════════════════════════════════════════════════════════════════════════════

// UnitOfWorkFactory implements student.UnitOfWorkFactory for PostgreSQL.
type UnitOfWorkFactory struct {
	conn *Connection
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory.
func NewUnitOfWorkFactory(conn *Connection) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{conn: conn}
}

// Begin starts a new transaction.
func (f *UnitOfWorkFactory) Begin(ctx context.Context) (student.UnitOfWork, error) {
	tx, err := f.conn.BeginTx(ctx, DefaultTxOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}

	return &unitOfWork{
		tx:       tx,
		students: newStudentRepositoryTx(tx),
		records:  newRecordRepositoryTx(tx),
	}, nil
}

type unitOfWork struct {
	tx       pgxTx
	students *StudentRepository
	records  *RecordRepository
	done     bool
}

// pgxTx narrows pgx.Tx to the lifecycle methods the unit of work needs.
type pgxTx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Students returns the transactional student repository.
func (u *unitOfWork) Students() student.Repository {
	return u.students
}

// Records returns the transactional record repository.
func (u *unitOfWork) Records() student.RecordRepository {
	return u.records
}

// Commit commits the transaction.
func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true

	if err := u.tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	return nil
}

// Rollback rolls back the transaction. Safe to call after Commit.
func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true

	if err := u.tx.Rollback(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	return nil
}
