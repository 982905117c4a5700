package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/productman/internal/model"
)

// PostgresProductRepo はPostgreSQLを使用した商品リポジトリ。
type PostgresProductRepo struct {
	db *sql.DB
}

// NewPostgresProductRepo はPostgresProductRepoを生成する。
func NewPostgresProductRepo(db *sql.DB) *PostgresProductRepo {
	return &PostgresProductRepo{db: db}
}

// Create は商品を作成する。
func (r *PostgresProductRepo) Create(ctx context.Context, product *model.Product) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (id, name, description, price, category, stock, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		product.ID, product.Name, product.Description, product.Price,
		product.Category, product.Stock, product.CreatedBy,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
func (r *PostgresProductRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	product := &model.Product{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, price, category, stock, created_by, created_at, updated_at
		 FROM products WHERE id = $1`,
		id,
	).Scan(
		&product.ID, &product.Name, &product.Description, &product.Price,
		&product.Category, &product.Stock, &product.CreatedBy,
		&product.CreatedAt, &product.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindByIDWithCreator は指定IDの商品を作成者の公開情報付きで取得する。
// 見つからない場合はnilを返す。
func (r *PostgresProductRepo) FindByIDWithCreator(ctx context.Context, id string) (*model.ProductWithCreator, error) {
	p := &model.ProductWithCreator{}
	err := r.db.QueryRowContext(ctx,
		`SELECT p.id, p.name, p.description, p.price, p.category, p.stock,
		        p.created_by, p.created_at, p.updated_at,
		        u.username, u.email
		 FROM products p
		 JOIN users u ON u.id = p.created_by
		 WHERE p.id = $1`,
		id,
	).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Stock,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
		&p.CreatorUsername, &p.CreatorEmail,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product with creator: %w", err)
	}

	return p, nil
}

// ListAll は全商品を作成者の公開情報付きで作成日時降順で返す。
func (r *PostgresProductRepo) ListAll(ctx context.Context) ([]model.ProductWithCreator, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.name, p.description, p.price, p.category, p.stock,
		        p.created_by, p.created_at, p.updated_at,
		        u.username, u.email
		 FROM products p
		 JOIN users u ON u.id = p.created_by
		 ORDER BY p.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return scanProductsWithCreator(rows)
}

// ListByCategory は指定カテゴリの商品を作成者の公開情報付きで作成日時降順で返す。
func (r *PostgresProductRepo) ListByCategory(ctx context.Context, category string) ([]model.ProductWithCreator, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.name, p.description, p.price, p.category, p.stock,
		        p.created_by, p.created_at, p.updated_at,
		        u.username, u.email
		 FROM products p
		 JOIN users u ON u.id = p.created_by
		 WHERE p.category = $1
		 ORDER BY p.created_at DESC`,
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}
	defer rows.Close()

	return scanProductsWithCreator(rows)
}

// Update は商品情報を上書き更新する。
// created_byとcreated_atは更新対象外（所有者は再割り当てしない）。
func (r *PostgresProductRepo) Update(ctx context.Context, product *model.Product) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products
		 SET name = $2, description = $3, price = $4, category = $5, stock = $6, updated_at = $7
		 WHERE id = $1`,
		product.ID, product.Name, product.Description, product.Price,
		product.Category, product.Stock, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product not found: %s", product.ID)
	}
	return nil
}

// Delete は指定IDの商品を削除する。
func (r *PostgresProductRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM products WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product not found: %s", id)
	}
	return nil
}

// scanProductsWithCreator は結合クエリの結果行をスキャンする。
func scanProductsWithCreator(rows *sql.Rows) ([]model.ProductWithCreator, error) {
	var products []model.ProductWithCreator

	for rows.Next() {
		var p model.ProductWithCreator
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Stock,
			&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
			&p.CreatorUsername, &p.CreatorEmail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product rows: %w", err)
	}

	return products, nil
}

// compile-time interface check
var _ ProductRepository = (*PostgresProductRepo)(nil)
