// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/productman/internal/model"
)

// 一意制約違反を表すエラー。
// サービス層がerrors.Isで重複フィールドを判別し、APIErrorに変換する。
var (
	// ErrDuplicateEmail はemailの一意制約違反を表す。
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrDuplicateUsername はusernameの一意制約違反を表す。
	ErrDuplicateUsername = errors.New("username already exists")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// username/emailの一意制約違反時はErrDuplicateUsername/ErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmailOrUsername はemailまたはusernameに一致するユーザーを検索する。
	// ログイン認証情報の解決に使用する。見つからない場合はnilを返す。
	FindByEmailOrUsername(ctx context.Context, key string) (*model.User, error)
}

// ProductRepository は商品データの永続化インターフェース。
type ProductRepository interface {
	// Create は商品を作成する。
	Create(ctx context.Context, product *model.Product) error

	// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Product, error)

	// FindByIDWithCreator は指定IDの商品を作成者の公開情報付きで取得する。
	// 見つからない場合はnilを返す。
	FindByIDWithCreator(ctx context.Context, id string) (*model.ProductWithCreator, error)

	// ListAll は全商品を作成者の公開情報付きで作成日時降順で返す。
	ListAll(ctx context.Context) ([]model.ProductWithCreator, error)

	// ListByCategory は指定カテゴリの商品を作成者の公開情報付きで作成日時降順で返す。
	ListByCategory(ctx context.Context, category string) ([]model.ProductWithCreator, error)

	// Update は商品情報を上書き更新する。
	Update(ctx context.Context, product *model.Product) error

	// Delete は指定IDの商品を削除する。対象が存在しない場合はエラーを返す。
	Delete(ctx context.Context, id string) error
}
