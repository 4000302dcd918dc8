package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"veilcredit/internal/certificate/models"
	"veilcredit/internal/oracle"
	"veilcredit/pkg/platform/sentinel"
)

// Postgres persists certificates. Execute takes a row lock (SELECT ... FOR
// UPDATE) so validate and apply are atomic per certificate while different
// certificates proceed in parallel.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the certificates table when it does not exist yet.
// The seq column preserves issuance order for listing.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS certificates (
			id                TEXT PRIMARY KEY,
			seq               BIGSERIAL,
			encrypted_amount  BYTEA NOT NULL,
			public_identifier BIGINT NOT NULL,
			owner_identity    TEXT NOT NULL,
			created_at        TIMESTAMPTZ NOT NULL,
			expires_at        TIMESTAMPTZ NOT NULL,
			retired           BOOLEAN NOT NULL DEFAULT FALSE,
			retired_at        TIMESTAMPTZ,
			revealed          BOOLEAN NOT NULL DEFAULT FALSE,
			clear_amount      BIGINT
		)`)
	if err != nil {
		return fmt.Errorf("ensure certificates schema: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, cert *models.Certificate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO certificates
			(id, encrypted_amount, public_identifier, owner_identity, created_at, expires_at, retired, retired_at, revealed, clear_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		cert.ID,
		[]byte(cert.EncryptedAmount),
		int64(cert.PublicIdentifier),
		cert.Owner,
		cert.CreatedAt,
		cert.ExpiresAt,
		cert.Retired,
		cert.RetiredAt,
		cert.Revealed,
		nullableAmount(cert.ClearAmount),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id string) (*models.Certificate, error) {
	row := s.db.QueryRowContext(ctx, selectCertificate+` WHERE id = $1`, id)
	return scanCertificate(row)
}

// Execute loads the row FOR UPDATE, runs validate then apply, and writes the
// result back in the same transaction. Validate errors roll back untouched.
func (s *Postgres) Execute(ctx context.Context, id string, validate func(*models.Certificate) error, apply func(*models.Certificate)) (*models.Certificate, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin certificate tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, selectCertificate+` WHERE id = $1 FOR UPDATE`, id)
	cert, err := scanCertificate(row)
	if err != nil {
		return nil, err
	}

	if err := validate(cert); err != nil {
		return nil, err
	}
	apply(cert)

	_, err = tx.ExecContext(ctx, `
		UPDATE certificates
		SET retired = $2, retired_at = $3, revealed = $4, clear_amount = $5
		WHERE id = $1`,
		cert.ID,
		cert.Retired,
		cert.RetiredAt,
		cert.Revealed,
		nullableAmount(cert.ClearAmount),
	)
	if err != nil {
		return nil, fmt.Errorf("update certificate: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit certificate tx: %w", err)
	}
	return cert, nil
}

// ListIDs yields ids in issuance order. Each range runs a fresh query, so the
// sequence is restartable.
func (s *Postgres) ListIDs(ctx context.Context) iter.Seq[string] {
	return func(yield func(string) bool) {
		rows, err := s.db.QueryContext(ctx, `SELECT id FROM certificates ORDER BY seq`)
		if err != nil {
			return
		}
		defer rows.Close()
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return
			}
			if !yield(id) {
				return
			}
		}
	}
}

func (s *Postgres) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM certificates`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count certificates: %w", err)
	}
	return count, nil
}

const selectCertificate = `
	SELECT id, encrypted_amount, public_identifier, owner_identity, created_at,
	       expires_at, retired, retired_at, revealed, clear_amount
	FROM certificates`

func scanCertificate(row *sql.Row) (*models.Certificate, error) {
	var (
		cert             models.Certificate
		handle           []byte
		publicIdentifier int64
		retiredAt        sql.NullTime
		clearAmount      sql.NullInt64
		createdAt        time.Time
		expiresAt        time.Time
	)
	err := row.Scan(
		&cert.ID, &handle, &publicIdentifier, &cert.Owner, &createdAt,
		&expiresAt, &cert.Retired, &retiredAt, &cert.Revealed, &clearAmount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan certificate: %w", err)
	}
	cert.EncryptedAmount = oracle.EncryptedHandle(handle)
	cert.PublicIdentifier = uint64(publicIdentifier)
	cert.CreatedAt = createdAt
	cert.ExpiresAt = expiresAt
	if retiredAt.Valid {
		t := retiredAt.Time
		cert.RetiredAt = &t
	}
	if clearAmount.Valid {
		v := uint64(clearAmount.Int64)
		cert.ClearAmount = &v
	}
	return &cert, nil
}

func nullableAmount(amount *uint64) sql.NullInt64 {
	if amount == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*amount), Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
