package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"veilcredit/internal/listing/models"
	"veilcredit/pkg/platform/sentinel"
)

// Postgres persists listings. Execute holds a row lock (SELECT ... FOR UPDATE)
// so quantity decrements and settlement run atomically per listing.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the listings table when it does not exist yet.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			id                 TEXT PRIMARY KEY,
			seq                BIGSERIAL,
			project_ref        TEXT NOT NULL,
			available_quantity BIGINT NOT NULL,
			price_per_unit     BIGINT NOT NULL,
			seller_identity    TEXT NOT NULL,
			active             BOOLEAN NOT NULL DEFAULT TRUE,
			created_at         TIMESTAMPTZ NOT NULL,
			updated_at         TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure listings schema: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, listing *models.Listing) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO listings
			(id, project_ref, available_quantity, price_per_unit, seller_identity, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		listing.ID,
		listing.ProjectRef,
		int64(listing.AvailableQuantity),
		int64(listing.PricePerUnit),
		listing.Seller,
		listing.Active,
		listing.CreatedAt,
		listing.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	row := s.db.QueryRowContext(ctx, selectListing+` WHERE id = $1`, id)
	return scanListing(row)
}

// Execute loads the row FOR UPDATE, runs validate then apply, and writes the
// result back in the same transaction. Validate errors roll back untouched.
func (s *Postgres) Execute(ctx context.Context, id string, validate func(*models.Listing) error, apply func(*models.Listing)) (*models.Listing, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin listing tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, selectListing+` WHERE id = $1 FOR UPDATE`, id)
	listing, err := scanListing(row)
	if err != nil {
		return nil, err
	}

	if err := validate(listing); err != nil {
		return nil, err
	}
	apply(listing)

	_, err = tx.ExecContext(ctx, `
		UPDATE listings
		SET available_quantity = $2, price_per_unit = $3, active = $4, updated_at = $5
		WHERE id = $1`,
		listing.ID,
		int64(listing.AvailableQuantity),
		int64(listing.PricePerUnit),
		listing.Active,
		listing.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit listing tx: %w", err)
	}
	return listing, nil
}

// ListIDs yields ids in creation order. Each range runs a fresh query, so the
// sequence is restartable.
func (s *Postgres) ListIDs(ctx context.Context) iter.Seq[string] {
	return func(yield func(string) bool) {
		rows, err := s.db.QueryContext(ctx, `SELECT id FROM listings ORDER BY seq`)
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
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return count, nil
}

const selectListing = `
	SELECT id, project_ref, available_quantity, price_per_unit, seller_identity,
	       active, created_at, updated_at
	FROM listings`

func scanListing(row *sql.Row) (*models.Listing, error) {
	var (
		listing   models.Listing
		quantity  int64
		price     int64
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(
		&listing.ID, &listing.ProjectRef, &quantity, &price, &listing.Seller,
		&listing.Active, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan listing: %w", err)
	}
	listing.AvailableQuantity = uint64(quantity)
	listing.PricePerUnit = uint64(price)
	listing.CreatedAt = createdAt
	listing.UpdatedAt = updatedAt
	return &listing, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
