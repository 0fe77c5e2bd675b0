package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clickstore/internal/common"
	"github.com/dmitrijs2005/clickstore/internal/dbx"
	"github.com/dmitrijs2005/clickstore/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	query := `
		INSERT INTO cart_items (user_id, product, amount, wave, owner_token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		item.UserID, item.Product, item.Amount, item.Wave, item.OwnerToken).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID int64, ownerToken string) ([]models.CartItem, error) {
	query := `
		SELECT id, user_id, product, amount, wave, owner_token, created_at
		FROM cart_items
		WHERE user_id = $1 AND owner_token = $2
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, userID, ownerToken)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := make([]models.CartItem, 0)
	for rows.Next() {
		var it models.CartItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.Product, &it.Amount, &it.Wave, &it.OwnerToken, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, userID int64, ownerToken string) (*models.CartItem, error) {
	query := `
		SELECT id, user_id, product, amount, wave, owner_token, created_at
		FROM cart_items
		WHERE id = $1 AND user_id = $2 AND owner_token = $3
	`
	it := &models.CartItem{}
	err := r.db.QueryRowContext(ctx, query, id, userID, ownerToken).
		Scan(&it.ID, &it.UserID, &it.Product, &it.Amount, &it.Wave, &it.OwnerToken, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id, userID int64, ownerToken string) error {
	query := `
		DELETE FROM cart_items
		WHERE id = $1 AND user_id = $2 AND owner_token = $3
	`
	res, err := r.db.ExecContext(ctx, query, id, userID, ownerToken)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
