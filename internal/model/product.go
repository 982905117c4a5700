// Package model はドメインモデルを定義する。
package model

import "time"

// Product は商品を表す。
// CreatedByは作成者ユーザーIDであり、作成時に1回だけ設定され以後変更されない。
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       int
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductWithCreator は商品と作成者の公開情報を結合した構造体。
// 一覧・詳細取得のレスポンスで使用する。
type ProductWithCreator struct {
	Product
	CreatorUsername string
	CreatorEmail    string
}

// ProductUpdate は商品の部分更新を表す。
// nilフィールドは変更せず、既存の値を維持する。
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Stock       *int
}
