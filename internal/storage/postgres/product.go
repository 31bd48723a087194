package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradepost/tradepost/internal/domain/catalog"
)

const productColumns = `id, name, description, category, condition, price,
	latitude, longitude, images, owner_id, status,
	likes_count, views_count, created_at, updated_at`

const insertProductSQL = `INSERT INTO products
	(id, name, description, category, condition, price, latitude, longitude, images, owner_id, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING created_at, updated_at`

const getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

const getProductForUpdateSQL = getProductByIDSQL + ` FOR UPDATE`

// The SET list deliberately excludes the counters along with id, owner_id,
// and created_at, so an owner edit can never clobber a concurrent toggle.
const updateProductSQL = `UPDATE products SET
	name = $2, description = $3, category = $4, condition = $5, price = $6,
	latitude = $7, longitude = $8, images = $9, status = $10, updated_at = now()
	WHERE id = $1
	RETURNING likes_count, views_count, updated_at`

const deleteProductSQL = `DELETE FROM products WHERE id = $1`

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Insert validates the listing, assigns its id, and persists it. The
// database fills the timestamps and the zeroed counters.
func (r *ProductRepository) Insert(ctx context.Context, p *catalog.Product) error {
	if p.Condition == "" {
		p.Condition = catalog.DefaultCondition
	}
	if p.Status == "" {
		p.Status = catalog.StatusActive
	}
	if err := catalog.Validate(p); err != nil {
		return err
	}

	p.ID = uuid.New().String()
	p.LikesCount = 0
	p.ViewsCount = 0

	err := r.pool.QueryRow(ctx, insertProductSQL,
		p.ID, p.Name, p.Description, p.Category, p.Condition, p.Price,
		p.Latitude, p.Longitude, p.Images, p.OwnerID, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return errors.Wrapf(err, "insert product %q", p.ID)
	}
	return nil
}

// GetByID returns a single listing by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %q", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %q", id)
	}
	return &p, nil
}

// UpdateFields applies a partial owner edit under a row lock. The merged
// record is revalidated as a whole, so a partial edit can never produce an
// invalid combination, and the write never touches the counter columns.
func (r *ProductRepository) UpdateFields(ctx context.Context, id, requesterID string, u catalog.Update) (*catalog.Product, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin update")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, getProductForUpdateSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "lock product %q", id)
	}
	current, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "lock product %q", id)
	}

	if err := catalog.AuthorizeMutation(&current, requesterID); err != nil {
		return nil, err
	}

	merged := current.Apply(u)
	if err := catalog.Validate(&merged); err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, updateProductSQL,
		merged.ID, merged.Name, merged.Description, merged.Category, merged.Condition,
		merged.Price, merged.Latitude, merged.Longitude, merged.Images, merged.Status,
	).Scan(&merged.LikesCount, &merged.ViewsCount, &merged.UpdatedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "update product %q", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit update")
	}
	return &merged, nil
}

// Delete removes a listing after the ownership check. Like rows referencing
// it are left behind; liked-set reads join through products and skip them.
func (r *ProductRepository) Delete(ctx context.Context, id, requesterID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin delete")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var ownerID string
	err = tx.QueryRow(ctx, `SELECT owner_id FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.ErrNotFound
		}
		return errors.Wrapf(err, "lock product %q", id)
	}

	if err := catalog.AuthorizeMutation(&catalog.Product{OwnerID: ownerID}, requesterID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, deleteProductSQL, id); err != nil {
		return errors.Wrapf(err, "delete product %q", id)
	}
	return errors.Wrap(tx.Commit(ctx), "commit delete")
}

// Query executes one filtered, sorted, paginated catalog read and returns
// the page plus the total filtered count. Proximity queries are bounded by
// an earth_box prefilter so the GiST index applies, then ordered by exact
// great-circle distance with creation order breaking ties.
func (r *ProductRepository) Query(ctx context.Context, q catalog.Query) ([]catalog.Product, int, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Status != "" {
		conds = append(conds, "status = "+arg(string(q.Status)))
	}
	if q.Category != "" {
		conds = append(conds, "category = "+arg(string(q.Category)))
	}
	if q.OwnerID != "" {
		conds = append(conds, "owner_id = "+arg(q.OwnerID))
	}
	if q.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*q.MinPrice))
	}
	if q.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*q.MaxPrice))
	}
	if q.Keyword != "" {
		pattern := arg("%" + q.Keyword + "%")
		conds = append(conds, fmt.Sprintf(
			"(name ILIKE %[1]s OR description ILIKE %[1]s OR category ILIKE %[1]s)", pattern))
	}

	var orderBy string
	if q.Near != nil {
		origin := fmt.Sprintf("ll_to_earth(%s, %s)", arg(q.Near.Latitude), arg(q.Near.Longitude))
		radius := arg(q.MaxDistanceMeters)
		conds = append(conds,
			fmt.Sprintf("earth_box(%s, %s) @> ll_to_earth(latitude, longitude)", origin, radius),
			fmt.Sprintf("earth_distance(%s, ll_to_earth(latitude, longitude)) <= %s", origin, radius),
		)
		orderBy = fmt.Sprintf(
			"earth_distance(%s, ll_to_earth(latitude, longitude)) ASC, created_at ASC, id ASC", origin)
	} else {
		switch q.Sort {
		case catalog.SortPriceAsc:
			orderBy = "price ASC, created_at ASC, id ASC"
		case catalog.SortPriceDesc:
			orderBy = "price DESC, created_at ASC, id ASC"
		default:
			orderBy = "created_at DESC, id DESC"
		}
	}

	var where string
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM products"+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	query := "SELECT " + productColumns + " FROM products" + where +
		" ORDER BY " + orderBy +
		" LIMIT " + arg(q.Limit) + " OFFSET " + arg(q.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "query products")
	}
	items, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, 0, errors.Wrap(err, "scan products")
	}
	return items, total, nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.Condition, &p.Price,
		&p.Latitude, &p.Longitude, &p.Images, &p.OwnerID, &p.Status,
		&p.LikesCount, &p.ViewsCount, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
