// Package product は商品管理のビジネスロジックを提供する。
package product

import "github.com/hitoshi/productman/internal/model"

// RequireOwnership は認証済みユーザーが商品の作成者であることを検証する。
// 作成者でない場合はForbiddenエラーを返し、作成者の場合はnilを返す。
// 更新・削除操作の前にのみ適用する。読み取りは意図的にこの検証を通さない
// （認証済みであれば誰でも全商品を閲覧できるのがこのシステムのポリシー）。
func RequireOwnership(user *model.User, p *model.Product) *model.APIError {
	if user == nil || p == nil {
		return model.NewForbiddenError()
	}
	// IDの明示的な等値比較。所有者は作成時に1回だけ設定される
	if user.ID != p.CreatedBy {
		return model.NewForbiddenError()
	}
	return nil
}
