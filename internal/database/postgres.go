package database

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type PgStrideRepository struct {
	conn *sql.DB
}

func NewPgStrideRepository(dsn string) (*PgStrideRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PgStrideRepository{conn: db}, nil
}

// Migrate applies any pending schema migrations from dir over the
// repository's existing connection.
func (db *PgStrideRepository) Migrate(dir string) error {
	driver, err := migratepg.WithInstance(db.conn, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func (db *PgStrideRepository) Ping() error {
	return db.conn.Ping()
}

func (db *PgStrideRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
