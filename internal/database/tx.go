package database

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// WithTx stores a transaction handle on the context so repositories called
// within the same unit of work share it.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// FromContext returns the transaction handle carried by ctx, or fallback
// when the caller is not inside a transaction.
func FromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}

// TxManager runs a function inside a single database transaction. Any error
// returned by fn rolls the whole unit of work back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// GormTxManager is the GORM-backed TxManager.
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a TxManager on the given connection.
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// WithinTx begins a transaction, injects it into the context, and commits
// when fn returns nil.
func (m *GormTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}
