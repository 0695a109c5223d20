package services

import (
	"context"
	"errors"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
	"github.com/ekaya-inc/manpower-engine/pkg/database"
)

// CreateStore inserts records of one type. A natural-key collision must be
// reported as apperrors.ErrConflict.
type CreateStore[T any] interface {
	Create(ctx context.Context, q database.Querier, record T) error
}

// UpsertStore can also overwrite the mutable fields of the record that
// already holds a record's natural key, filling in the stored ID.
type UpsertStore[T any] interface {
	CreateStore[T]
	UpdateByKey(ctx context.Context, q database.Querier, record T) error
}

// RecordError pairs a rejected input record with the reason.
type RecordError[T any] struct {
	Record T      `json:"record"`
	Error  string `json:"error"`
}

// BulkResult splits a batch into stored records and rejected ones, each in
// input order.
type BulkResult[T any] struct {
	Succeeded []T              `json:"succeeded"`
	Failed    []RecordError[T] `json:"failed"`
}

func newBulkResult[T any]() *BulkResult[T] {
	return &BulkResult[T]{Succeeded: []T{}, Failed: []RecordError[T]{}}
}

func (r *BulkResult[T]) fail(record T, err error) {
	r.Failed = append(r.Failed, RecordError[T]{Record: record, Error: err.Error()})
}

// Reconcile writes each record inside its own savepoint of uow. A record
// whose natural key already exists is updated in place instead. Any other
// failure rolls that record back and is reported in Failed while the rest of
// the batch proceeds.
func Reconcile[T any](ctx context.Context, uow database.UnitOfWork, store UpsertStore[T], records []T) *BulkResult[T] {
	result := newBulkResult[T]()
	for _, rec := range records {
		err := uow.Savepoint(ctx, func(sp database.UnitOfWork) error {
			return store.Create(ctx, sp, rec)
		})
		if errors.Is(err, apperrors.ErrConflict) {
			err = uow.Savepoint(ctx, func(sp database.UnitOfWork) error {
				return store.UpdateByKey(ctx, sp, rec)
			})
		}
		if err != nil {
			result.fail(rec, err)
			continue
		}
		result.Succeeded = append(result.Succeeded, rec)
	}
	return result
}

// insertEach is Reconcile without the update branch. describe turns a
// store error into the message reported for that record.
func insertEach[T any](ctx context.Context, uow database.UnitOfWork, store CreateStore[T], records []T, describe func(T, error) error) *BulkResult[T] {
	result := newBulkResult[T]()
	for _, rec := range records {
		err := uow.Savepoint(ctx, func(sp database.UnitOfWork) error {
			return store.Create(ctx, sp, rec)
		})
		if err != nil {
			result.fail(rec, describe(rec, err))
			continue
		}
		result.Succeeded = append(result.Succeeded, rec)
	}
	return result
}
