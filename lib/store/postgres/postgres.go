// Package postgres implements the interface for PostgreSQL.
package postgres

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/lib/pq" //nolint:gci // load the postgres driver that is used by the system

	"github.com/tarancss/educertify/lib/store"
)

const schema = `CREATE TABLE IF NOT EXISTS actions (
	id BIGSERIAL PRIMARY KEY,
	address TEXT NOT NULL,
	function TEXT NOT NULL,
	hash TEXT NOT NULL DEFAULT '',
	ok BOOLEAN NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	ts BIGINT NOT NULL
)`

type Postgres struct {
	db *sql.DB
}

// New returns a postgres client connection to the specified database in 'connection' and makes sure the actions
// table exists.
func New(connection string) (*Postgres, error) {
	db, err := sql.Open("postgres", connection)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to DB in %s: %w", connection, err)
	}

	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot create schema in %s: %w", connection, err)
	}

	return &Postgres{db: db}, nil
}

// ClosePostgres will close any database connection. Must be called at termination time.
func (p *Postgres) ClosePostgres() error {
	return p.db.Close()
}

// AddAction saves an action and returns its id as a decimal string.
func (p *Postgres) AddAction(a store.Action) ([]byte, error) {
	var id int64

	err := p.db.QueryRow(`INSERT INTO actions (address, function, hash, ok, message, ts)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		a.Address, a.Function, a.Hash, a.OK, a.Message, a.TS).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("could not insert action in db: %w", err)
	}

	return []byte(strconv.FormatInt(id, 10)), nil
}

// GetActions returns the actions of the given wallet address, oldest first. An empty address returns all actions.
func (p *Postgres) GetActions(address string) ([]store.Action, error) {
	rows, err := p.db.Query(`SELECT id, address, function, hash, ok, message, ts FROM actions
		WHERE $1 = '' OR address = $1 ORDER BY ts, id`, address)
	if err != nil {
		return nil, fmt.Errorf("error querying actions: %w", err)
	}
	defer rows.Close()

	actions := []store.Action{}

	for rows.Next() {
		var id int64
		var a store.Action
		if err = rows.Scan(&id, &a.Address, &a.Function, &a.Hash, &a.OK, &a.Message, &a.TS); err != nil {
			return nil, err
		}
		a.ID = []byte(strconv.FormatInt(id, 10))
		actions = append(actions, a)
	}

	return actions, rows.Err()
}

// DeleteActions deletes all the actions of the given wallet address.
func (p *Postgres) DeleteActions(address string) (err error) {
	_, err = p.db.Exec(`DELETE FROM actions WHERE address = $1`, address)

	return
}
