// Package storage defines the persistence interfaces the domain services
// rely on. It abstracts per-entity queries and transaction management so a
// relational backend (PostgreSQL here) can provide the implementation.
package storage

import "context"

// AllStorage is the composite of every domain-specific storage capability.
// Service methods receive it both inside and outside transactions.
type AllStorage interface {
	UserStorage
	CategoryStorage
	ListStorage
	ItemStorage
	BudgetStorage
	ShareStorage
	SessionStorage
}

// TxStorage is a storage handle bound to an open database transaction. It
// becomes unusable after Commit or Rollback.
type TxStorage interface {
	AllStorage

	// Commit finalizes the transaction, persisting all changes.
	Commit() error
	// Rollback aborts the transaction, discarding all uncommitted changes.
	Rollback() error
}

// Storage is the non-transactional handle with the ability to start
// transactions and manage the connection lifecycle.
type Storage interface {
	AllStorage

	// Close releases the underlying connection pool.
	Close() error

	// Begin starts a new transaction.
	Begin(ctx context.Context) (TxStorage, error)
	// WithTx begins a transaction, invokes cb with the transactional handle,
	// commits on nil return and rolls back otherwise. Every mutating service
	// operation runs its body through this helper so read-check-then-write
	// sequences are serialized against other callers.
	WithTx(ctx context.Context, cb func(storage AllStorage) error) error
}
