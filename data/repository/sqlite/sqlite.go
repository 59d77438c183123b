package sqlite

import "github.com/jmoiron/sqlx"

// Sqlite is the operation-history repository over the embedded history db.
type Sqlite struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Sqlite {
	return &Sqlite{db: db}
}
