package database

import (
	"database/sql"
	"errors"

	"reg-go/internal/database/sqlc"
	"reg-go/internal/registry"
)

// sqliteTx is one open transaction. Stores handed out by it share the
// underlying *sql.Tx and the tx-local path cache overlay.
type sqliteTx struct {
	db   *SQLiteDatabase
	tx   *sql.Tx
	q    *sqlc.Queries
	sess registry.Session
	log  registry.Logger

	// paths interned by this transaction; published on commit
	pending    map[string]int64
	pendingRev map[int64]string

	done bool
}

func newSQLiteTx(db *SQLiteDatabase, tx *sql.Tx, sess registry.Session) *sqliteTx {
	return &sqliteTx{
		db:         db,
		tx:         tx,
		q:          db.queries.WithTx(tx),
		sess:       sess,
		log:        registry.WithFields(db.opts.Logger, "tenant", sess.TenantID),
		pending:    make(map[string]int64),
		pendingRev: make(map[int64]string),
	}
}

func (t *sqliteTx) Session() registry.Session { return t.sess }

func (t *sqliteTx) Paths() registry.PathCache { return &pathStore{t: t} }

func (t *sqliteTx) Resources() registry.ResourceStore { return &resourceStore{t: t} }

func (t *sqliteTx) Associations() registry.AssociationStore { return &associationStore{t: t} }

func (t *sqliteTx) Logs() registry.LogStore { return &logStore{t: t} }

func (t *sqliteTx) Commit() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		return registry.NewPersistenceError("commit", "", err)
	}
	t.db.paths.publish(t.sess.TenantID, t.pending)
	return nil
}

func (t *sqliteTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		t.log.Warn("rollback failed", "error", err)
		return err
	}
	return nil
}

// closeRows closes rows opened outside the generated queries. Failures are
// logged and never replace the caller's result.
func (t *sqliteTx) closeRows(rows *sql.Rows, op string) {
	if err := rows.Close(); err != nil {
		t.log.Warn("closing rows failed", "op", op, "error", err)
	}
}

var _ registry.Tx = (*sqliteTx)(nil)
