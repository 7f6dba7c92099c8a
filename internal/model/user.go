// Package model はデータストアに保存されるドキュメントの型を定義します。
package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// AccessAuth はセッショントークンの用途タグです。
// トークンの発行・検証・保存のすべてでこの値に一致することを要求します。
const AccessAuth = "auth"

// TokenEntry はユーザーに紐づくセッショントークン1件を表します。
type TokenEntry struct {
	Access string `bson:"access" json:"access"`
	Token  string `bson:"token" json:"token"`
}

// User は登録済みユーザーのドキュメントです。
// パスワードハッシュとトークン列はAPIレスポンスに含めません。
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
	Tokens   []TokenEntry       `bson:"tokens" json:"-"`
}
