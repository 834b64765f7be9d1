package listings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/dbx"
	"github.com/dmitrijs2005/gophmarket/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgInvalidText is raised for ids that are not valid UUIDs.
const pgInvalidText = "22P02"

func notFound(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidText
}

const listingColumns = `id, seller_id, title, description, price_cents, currency, category, location, status, image_key, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(s scanner) (*models.Listing, error) {
	l := &models.Listing{}
	var status string
	if err := s.Scan(&l.ID, &l.SellerID, &l.Title, &l.Description, &l.PriceCents, &l.Currency,
		&l.Category, &l.Location, &status, &l.ImageKey, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.Status = models.ListingStatus(status)
	return l, nil
}

func (r *PostgresRepository) Create(ctx context.Context, l *models.Listing) (*models.Listing, error) {
	query := `
		INSERT INTO listings (seller_id, title, description, price_cents, currency, category, location, status, image_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		l.SellerID, l.Title, l.Description, l.PriceCents, l.Currency, l.Category, l.Location, string(l.Status), l.ImageKey,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	l, err := scanListing(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if notFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings
		WHERE ($1::text = '' OR seller_id::text = $1::text)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, f.SellerID, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select listings: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, up models.ListingUpdate) (*models.Listing, error) {
	var status *string
	if up.Status != nil {
		s := string(*up.Status)
		status = &s
	}

	query := `
		UPDATE listings SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			price_cents = COALESCE($4, price_cents),
			currency = COALESCE($5, currency),
			category = COALESCE($6, category),
			location = COALESCE($7, location),
			status = COALESCE($8, status),
			image_key = COALESCE($9, image_key),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + listingColumns

	l, err := scanListing(r.db.QueryRowContext(ctx, query, id,
		up.Title, up.Description, up.PriceCents, up.Currency, up.Category, up.Location, status, up.ImageKey))
	if err != nil {
		if notFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		if notFound(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteBySeller(ctx context.Context, sellerID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE seller_id = $1`, sellerID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
