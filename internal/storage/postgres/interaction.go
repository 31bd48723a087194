package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/tradepost/tradepost/internal/domain/catalog"
)

// Counter mutations are single self-contained statements: the increment or
// decrement happens inside the UPDATE, so concurrent interactions on the
// same listing can never lose an update. The decrement is floored at zero.
const (
	incrementLikesSQL = `UPDATE products
		SET likes_count = likes_count + 1, updated_at = now()
		WHERE id = $1`

	decrementLikesSQL = `UPDATE products
		SET likes_count = GREATEST(likes_count - 1, 0), updated_at = now()
		WHERE id = $1`

	incrementViewsSQL = `UPDATE products
		SET views_count = views_count + 1, updated_at = now()
		WHERE id = $1
		RETURNING ` + productColumns

	listLikedSQL = `SELECT
		p.id, p.name, p.description, p.category, p.condition, p.price,
		p.latitude, p.longitude, p.images, p.owner_id, p.status,
		p.likes_count, p.views_count, p.created_at, p.updated_at
		FROM product_likes l
		JOIN products p ON p.id = l.product_id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC`
)

// ToggleLike flips the (user, listing) like membership inside one
// transaction. The primary key on product_likes serializes toggles from the
// same user; toggles from different users only contend on the atomic
// counter update.
func (r *ProductRepository) ToggleLike(ctx context.Context, userID, productID string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, errors.Wrap(err, "begin toggle")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID,
	).Scan(&exists); err != nil {
		return false, errors.Wrapf(err, "check product %q", productID)
	}
	if !exists {
		return false, catalog.ErrNotFound
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM product_likes WHERE user_id = $1 AND product_id = $2`,
		userID, productID,
	)
	if err != nil {
		return false, errors.Wrap(err, "remove like")
	}

	liked := tag.RowsAffected() == 0
	if liked {
		if _, err := tx.Exec(ctx,
			`INSERT INTO product_likes (user_id, product_id) VALUES ($1, $2)`,
			userID, productID,
		); err != nil {
			return false, errors.Wrap(err, "add like")
		}
		if _, err := tx.Exec(ctx, incrementLikesSQL, productID); err != nil {
			return false, errors.Wrap(err, "increment likes")
		}
	} else {
		if _, err := tx.Exec(ctx, decrementLikesSQL, productID); err != nil {
			return false, errors.Wrap(err, "decrement likes")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, errors.Wrap(err, "commit toggle")
	}
	return liked, nil
}

// IncrementViews bumps the view counter by exactly one and returns the
// listing with the post-increment count. Every call counts; there is no
// per-viewer de-duplication.
func (r *ProductRepository) IncrementViews(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, incrementViewsSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "increment views for %q", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "increment views for %q", id)
	}
	return &p, nil
}

// HasLiked reports whether userID currently likes productID.
func (r *ProductRepository) HasLiked(ctx context.Context, userID, productID string) (bool, error) {
	var liked bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM product_likes WHERE user_id = $1 AND product_id = $2)`,
		userID, productID,
	).Scan(&liked)
	if err != nil {
		return false, errors.Wrapf(err, "check like for %q", userID)
	}
	return liked, nil
}

// ListLiked resolves a user's liked set to full listings, most recently
// liked first. The inner join drops rows whose listing has been deleted, so
// dangling like entries never surface.
func (r *ProductRepository) ListLiked(ctx context.Context, userID string) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listLikedSQL, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "list liked for %q", userID)
	}
	return pgx.CollectRows(rows, scanProduct)
}
