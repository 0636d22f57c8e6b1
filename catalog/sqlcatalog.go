package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

/*
sqlcatalog stores listings in a SQLite database. Versions come from an
autoincrement sequence table so they are unique across names and survive
restarts.
*/

////////////////////////////////////////////////////////////////////////////////

type sqlcatalog struct {
	db *sql.DB
}

// NewSQLCatalog returns a catalog backed by db, migrating the schema if
// required.
func NewSQLCatalog(db *sql.DB) (Catalog, error) {
	c := &sqlcatalog{db: db}
	if err := c.initialize(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *sqlcatalog) initialize() error {
	var maxApplied int64
	err := c.db.QueryRow("select max(version) from schema_migrations").Scan(&maxApplied)
	if err == nil && maxApplied == 1 {
		return nil
	}
	if _, err := c.db.Exec(`
	create table if not exists catalog (
		name text not null,
		version bigint not null,
		object_id text not null,
		count bigint not null,
		height bigint not null,
		fingerprint bigint not null,
		timestamp text not null default current_timestamp,
		primary key (name, version)
	);

	create table if not exists version_seq (
		version integer primary key autoincrement
	);

	create table if not exists schema_migrations(
		version bigint not null,
		timestamp text not null default current_timestamp
	);

	insert into schema_migrations(version) values (1);
	`); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (c *sqlcatalog) NextVersion(ctx context.Context) (uint64, error) {
	var version uint64
	err := c.db.QueryRowContext(ctx, "insert into version_seq default values returning version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate version: %w", err)
	}
	return version, nil
}

func (c *sqlcatalog) Put(ctx context.Context, listing Listing) error {
	var err error
	if listing.Timestamp == "" {
		_, err = c.db.ExecContext(ctx, `
		insert into catalog (name, version, object_id, count, height, fingerprint)
		values ($1, $2, $3, $4, $5, $6)`,
			listing.Name, listing.Version, listing.ObjectID,
			listing.Count, listing.Height, listing.Fingerprint,
		)
	} else {
		_, err = c.db.ExecContext(ctx, `
		insert into catalog (name, version, object_id, count, height, fingerprint, timestamp)
		values ($1, $2, $3, $4, $5, $6, $7)`,
			listing.Name, listing.Version, listing.ObjectID,
			listing.Count, listing.Height, listing.Fingerprint, listing.Timestamp,
		)
	}
	if err != nil {
		sqliteErr := sqlite3.Error{}
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return ErrListingExists
		}
		return fmt.Errorf("failed to store to catalog: %w", err)
	}
	return nil
}

const selectListing = `
	select name, version, object_id, count, height, fingerprint, timestamp from catalog`

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(row scanner) (Listing, error) {
	listing := Listing{}
	err := row.Scan(
		&listing.Name,
		&listing.Version,
		&listing.ObjectID,
		&listing.Count,
		&listing.Height,
		&listing.Fingerprint,
		&listing.Timestamp,
	)
	return listing, err
}

func (c *sqlcatalog) GetLatest(ctx context.Context, name string) (Listing, error) {
	row := c.db.QueryRowContext(ctx, selectListing+`
	where name = $1 order by version desc limit 1`, name)
	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Listing{}, TreeNotFoundError{Name: name}
		}
		return Listing{}, fmt.Errorf("failed to read from catalog: %w", err)
	}
	return listing, nil
}

func (c *sqlcatalog) Get(ctx context.Context, name string, version uint64) (Listing, error) {
	row := c.db.QueryRowContext(ctx, selectListing+`
	where name = $1 and version = $2`, name, version)
	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Listing{}, TreeNotFoundError{Name: name, Version: version}
		}
		return Listing{}, fmt.Errorf("failed to read from catalog: %w", err)
	}
	return listing, nil
}

func (c *sqlcatalog) History(ctx context.Context, name string) ([]Listing, error) {
	rows, err := c.db.QueryContext(ctx, selectListing+`
	where name = $1 order by version asc`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read from catalog: %w", err)
	}
	defer rows.Close()
	history := []Listing{}
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		history = append(history, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read from catalog: %w", err)
	}
	if len(history) == 0 {
		return nil, TreeNotFoundError{Name: name}
	}
	return history, nil
}

func (c *sqlcatalog) Names(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "select distinct name from catalog order by name")
	if err != nil {
		return nil, fmt.Errorf("failed to read from catalog: %w", err)
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read from catalog: %w", err)
	}
	return names, nil
}
