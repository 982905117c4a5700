package product

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/productman/internal/model"
	"github.com/hitoshi/productman/internal/repository"
	"github.com/hitoshi/productman/internal/security"
)

// CreateInput は商品作成の入力を表す。
type CreateInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       int
}

// Service は商品管理のビジネスロジックを提供する。
// 入力のサニタイズ、検証、所有権の強制を行う。
type Service struct {
	products  repository.ProductRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceを生成する。
func NewService(products repository.ProductRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		products:  products,
		sanitizer: sanitizer,
	}
}

// Create は新規商品を作成する。作成者は認証済みユーザーに固定される。
func (s *Service) Create(ctx context.Context, user *model.User, input CreateInput) (*model.Product, error) {
	name := s.sanitizer.Sanitize(input.Name)
	description := s.sanitizer.Sanitize(input.Description)
	category := s.sanitizer.Sanitize(input.Category)

	if name == "" {
		return nil, model.NewValidationError("商品名は必須です")
	}
	if description == "" {
		return nil, model.NewValidationError("商品説明は必須です")
	}
	if category == "" {
		return nil, model.NewValidationError("カテゴリは必須です")
	}
	if input.Price <= 0 {
		return nil, model.NewValidationError("価格は0より大きい値を指定してください")
	}
	if input.Stock < 0 {
		return nil, model.NewValidationError("在庫数は0以上を指定してください")
	}

	now := time.Now()
	p := &model.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Price:       input.Price,
		Category:    category,
		Stock:       input.Stock,
		CreatedBy:   user.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return p, nil
}

// List は全商品を作成者の公開情報付きで返す。
// 読み取りは所有者制限なし（認証済みであれば誰でも閲覧できる）。
func (s *Service) List(ctx context.Context) ([]model.ProductWithCreator, error) {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListByCategory は指定カテゴリの商品を作成者の公開情報付きで返す。
func (s *Service) ListByCategory(ctx context.Context, category string) ([]model.ProductWithCreator, error) {
	products, err := s.products.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}
	return products, nil
}

// Get は指定IDの商品を作成者の公開情報付きで取得する。
func (s *Service) Get(ctx context.Context, id string) (*model.ProductWithCreator, error) {
	p, err := s.products.FindByIDWithCreator(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return nil, model.NewProductNotFoundError(id)
	}
	return p, nil
}

// Update は商品を部分更新する。作成者のみ実行できる。
// updateのnilフィールドは変更せず、既存の値を維持する。
func (s *Service) Update(ctx context.Context, user *model.User, id string, update model.ProductUpdate) (*model.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	if p == nil {
		return nil, model.NewProductNotFoundError(id)
	}

	if apiErr := RequireOwnership(user, p); apiErr != nil {
		return nil, apiErr
	}

	if update.Name != nil {
		name := s.sanitizer.Sanitize(*update.Name)
		if name == "" {
			return nil, model.NewValidationError("商品名は空にできません")
		}
		p.Name = name
	}
	if update.Description != nil {
		description := s.sanitizer.Sanitize(*update.Description)
		if description == "" {
			return nil, model.NewValidationError("商品説明は空にできません")
		}
		p.Description = description
	}
	if update.Price != nil {
		if *update.Price <= 0 {
			return nil, model.NewValidationError("価格は0より大きい値を指定してください")
		}
		p.Price = *update.Price
	}
	if update.Category != nil {
		category := s.sanitizer.Sanitize(*update.Category)
		if category == "" {
			return nil, model.NewValidationError("カテゴリは空にできません")
		}
		p.Category = category
	}
	if update.Stock != nil {
		if *update.Stock < 0 {
			return nil, model.NewValidationError("在庫数は0以上を指定してください")
		}
		p.Stock = *update.Stock
	}

	p.UpdatedAt = time.Now()

	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return p, nil
}

// Delete は商品を削除する。作成者のみ実行できる。
func (s *Service) Delete(ctx context.Context, user *model.User, id string) error {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find product: %w", err)
	}
	if p == nil {
		return model.NewProductNotFoundError(id)
	}

	if apiErr := RequireOwnership(user, p); apiErr != nil {
		return apiErr
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}
