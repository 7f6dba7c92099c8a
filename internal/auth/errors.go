package auth

import "errors"

// ErrInvalidToken は署名不正・形式不正・用途タグ違いをまとめた失敗種別です。
// 原因を区別せず、クライアントには一律 401 として返します。
var ErrInvalidToken = errors.New("auth: invalid token")
