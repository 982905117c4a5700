// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService はユーザー入力の商品情報（名前・説明・カテゴリ）から
// HTMLタグを除去し、XSS攻撃などのセキュリティリスクからユーザーを保護する。
// 商品情報はプレーンテキストとして扱うため、bluemondayのStrictPolicyで
// すべてのタグを除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はテキストのサニタイズ機能のインターフェースを定義する。
// 商品の作成・更新時に保存前のフィールドへ適用される。
type TextSanitizerService interface {
	// Sanitize は入力テキストからすべてのHTMLタグを除去し、
	// 前後の空白をトリムして返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(input string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはすべてのタグと属性を除去する（script、img、on*イベント属性を含む）。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力テキストからすべてのHTMLタグを除去して返す。
func (s *textSanitizer) Sanitize(input string) string {
	return strings.TrimSpace(s.policy.Sanitize(input))
}
