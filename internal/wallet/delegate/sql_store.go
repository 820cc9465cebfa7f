package delegate

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-trader/internal/wallet/keystore"

	// database/sql drivers of the supported dialects
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported SQL dialects.
const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// Fixed ID for single record
const keystoreID = "00000000-0000-0000-0000-000000000001"

// SQLStore persists delegate state in SQLite or Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// OpenSQLStore opens the database and applies pending migrations.
func OpenSQLStore(ctx context.Context, dialect string, dsn string) (*SQLStore, error) {
	if dialect != DialectSQLite && dialect != DialectPostgres {
		return nil, errors.Errorf("unsupported delegate store dialect %q", dialect)
	}

	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open delegate store")
	}

	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to connect to delegate store")
	}

	n, err := Migrate(ctx, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Debug().Str("dialect", dialect).Int("applied", n).Msg("Delegate store migrated")

	return NewSQLStore(db, dialect), nil
}

// NewSQLStore wraps an already migrated database.
func NewSQLStore(db *sql.DB, dialect string) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

func (s *SQLStore) LoadKeystore(ctx context.Context) (*keystore.KeystoreJSON, common.Address, error) {
	var (
		address string
		data    string
	)

	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT address, keystore_data FROM delegate_keystores WHERE id = ?`), keystoreID,
	).Scan(&address, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.Address{}, ErrNotFound
		}
		return nil, common.Address{}, errors.Wrap(err, "failed to get keystore")
	}

	var ks keystore.KeystoreJSON
	if err := json.Unmarshal([]byte(data), &ks); err != nil {
		return nil, common.Address{}, errors.Wrap(err, "failed to unmarshal keystore JSON")
	}

	return &ks, common.HexToAddress(address), nil
}

func (s *SQLStore) SaveKeystore(ctx context.Context, address common.Address, ks *keystore.KeystoreJSON) error {
	data, err := json.Marshal(ks)
	if err != nil {
		return errors.Wrap(err, "failed to marshal keystore JSON")
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO delegate_keystores (id, address, keystore_data) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET address = excluded.address, keystore_data = excluded.keystore_data`),
		keystoreID, address.Hex(), string(data),
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert keystore")
	}

	return nil
}

func (s *SQLStore) IsDelegated(ctx context.Context, delegate common.Address) (bool, error) {
	var delegated bool

	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT delegated FROM delegate_authorizations WHERE delegate = ?`), delegate.Hex(),
	).Scan(&delegated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, errors.Wrap(err, "failed to get delegation flag")
	}

	return delegated, nil
}

func (s *SQLStore) SetDelegated(ctx context.Context, delegate common.Address) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO delegate_authorizations (delegate, delegated) VALUES (?, ?)
		ON CONFLICT (delegate) DO UPDATE SET delegated = excluded.delegated, updated_at = CURRENT_TIMESTAMP`),
		delegate.Hex(), true,
	)
	if err != nil {
		return errors.Wrap(err, "failed to set delegation flag")
	}

	return nil
}

func (s *SQLStore) IsSetupComplete(ctx context.Context, trader, delegate common.Address) (bool, error) {
	var complete bool

	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT complete FROM delegate_setups WHERE trader = ? AND delegate = ?`), trader.Hex(), delegate.Hex(),
	).Scan(&complete)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, errors.Wrap(err, "failed to get setup flag")
	}

	return complete, nil
}

func (s *SQLStore) SetSetupComplete(ctx context.Context, trader, delegate common.Address, complete bool) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO delegate_setups (trader, delegate, complete) VALUES (?, ?, ?)
		ON CONFLICT (trader, delegate) DO UPDATE SET complete = excluded.complete, updated_at = CURRENT_TIMESTAMP`),
		trader.Hex(), delegate.Hex(), complete,
	)
	if err != nil {
		return errors.Wrap(err, "failed to set setup flag")
	}

	return nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"delegate_setups", "delegate_authorizations", "delegate_keystores"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.Wrapf(err, "failed to clear %s", table)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit clear")
	}

	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
