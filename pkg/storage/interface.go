// Package storage defines the persistence interfaces the application relies
// on. It abstracts entity storage and transaction management so that
// different backends (PostgreSQL in production, in-memory in tests) can
// provide concrete implementations.
package storage

import "context"

// AllStorage is a composite interface including every domain-specific
// storage capability required by the application.
type AllStorage interface {
	ProjectStorage
	DomainStorage
	MetricsStorage
	RegistryStorage
	SettingsStorage
	JobStorage
}

// TxStorage is a storage handle operating within a database transaction.
// Implementations become unusable after Commit or Rollback.
type TxStorage interface {
	AllStorage

	// Commit finalizes the transaction, persisting all changes.
	Commit() error
	// Rollback aborts the transaction, discarding uncommitted changes.
	Rollback() error
}

// Storage is a non-transactional storage handle with the ability to start
// transactions and manage the backend lifecycle.
type Storage interface {
	AllStorage

	// Close releases resources held by the implementation.
	Close() error

	// Begin starts a new transaction.
	Begin(ctx context.Context) (TxStorage, error)
	// WithTx begins a transaction, invokes cb, and commits on success or
	// rolls back when cb returns an error.
	WithTx(ctx context.Context, cb func(storage AllStorage) error) error
}
