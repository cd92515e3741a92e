package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories bound to one connection or one transaction.
type Store struct {
	db       *DB
	Teams    *TeamRepository
	Scores   *ScoreRepository
	Progress *ProgressRepository
}

// NewStore creates a store whose repositories share db.
func NewStore(db *DB) *Store {
	return &Store{
		db:       db,
		Teams:    NewTeamRepository(db),
		Scores:   NewScoreRepository(db),
		Progress: NewProgressRepository(db),
	}
}

// WithContext returns a store whose queries carry ctx.
func (s *Store) WithContext(ctx context.Context) *Store {
	return NewStore(&DB{DB: s.db.WithContext(ctx), driver: s.db.driver, pgURL: s.db.pgURL})
}

// Transaction runs fn against a store bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(&DB{DB: tx, driver: s.db.driver, pgURL: s.db.pgURL}))
	})
}
