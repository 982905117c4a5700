package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/productman/internal/middleware"
	"github.com/hitoshi/productman/internal/model"
	"github.com/hitoshi/productman/internal/product"
)

// ProductServiceInterface は商品ハンドラーが必要とするサービスインターフェース。
type ProductServiceInterface interface {
	Create(ctx context.Context, user *model.User, input product.CreateInput) (*model.Product, error)
	List(ctx context.Context) ([]model.ProductWithCreator, error)
	ListByCategory(ctx context.Context, category string) ([]model.ProductWithCreator, error)
	Get(ctx context.Context, id string) (*model.ProductWithCreator, error)
	Update(ctx context.Context, user *model.User, id string, update model.ProductUpdate) (*model.Product, error)
	Delete(ctx context.Context, user *model.User, id string) error
}

// ProductHandler は商品管理のHTTPハンドラー。
type ProductHandler struct {
	service ProductServiceInterface
}

// NewProductHandler はProductHandlerを生成する。
func NewProductHandler(service ProductServiceInterface) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// createProductRequest は商品作成リクエストのボディ。
type createProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
}

// updateProductRequest は商品更新リクエストのボディ。
// nilのフィールドは現在の値を維持する（部分更新）。
type updateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock"`
}

// productResponse は商品情報のAPIレスポンス。
type productResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Category    string      `json:"category"`
	Stock       int         `json:"stock"`
	CreatedBy   interface{} `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// creatorResponse は商品作成者の公開情報。
type creatorResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Create は商品作成を処理する。
// POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	p, err := h.service.Create(r.Context(), user, product.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusCreated, "商品を登録しました。", toProductResponse(p))
}

// List は商品一覧を返す。
// GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeListResponse(w, "", toProductListResponse(products), len(products))
}

// ListByCategory はカテゴリ別の商品一覧を返す。
// GET /api/products/category/{category}
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	products, err := h.service.ListByCategory(r.Context(), category)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeListResponse(w, "", toProductListResponse(products), len(products))
}

// Get は商品詳細を返す。
// GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, "", toProductWithCreatorResponse(*p))
}

// Update は商品の部分更新を処理する。作成者のみ実行できる。
// PUT /api/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	id := chi.URLParam(r, "id")

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	p, err := h.service.Update(r.Context(), user, id, model.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, "商品を更新しました。", toProductResponse(p))
}

// Delete は商品削除を処理する。作成者のみ実行できる。
// DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), user, id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, "商品を削除しました。", nil)
}

// --- ヘルパー関数 ---

// toProductResponse はmodel.ProductからAPIレスポンスに変換する。
// 作成者情報はIDのみ設定する。
func toProductResponse(p *model.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Stock:       p.Stock,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// toProductWithCreatorResponse は作成者の公開情報を含むAPIレスポンスに変換する。
func toProductWithCreatorResponse(p model.ProductWithCreator) productResponse {
	resp := toProductResponse(&p.Product)
	resp.CreatedBy = creatorResponse{
		ID:       p.CreatedBy,
		Username: p.CreatorUsername,
		Email:    p.CreatorEmail,
	}
	return resp
}

// toProductListResponse は商品一覧をAPIレスポンスに変換する。
// 空一覧でもnilではなく空配列を返す。
func toProductListResponse(products []model.ProductWithCreator) []productResponse {
	results := make([]productResponse, len(products))
	for i, p := range products {
		results[i] = toProductWithCreatorResponse(p)
	}
	return results
}
