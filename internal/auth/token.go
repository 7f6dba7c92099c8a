// Package auth はセッショントークンの発行・検証と認証ミドルウェアを提供します。
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rotemsade/todo-api/internal/model"
)

// Manager はトークンの発行と検証をまとめた構造体です。
// 署名鍵は起動時に設定から渡され、以後は変更されません。
type Manager struct {
	secret []byte
}

// NewManager は認証マネージャーを作成します。
func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// Issue はユーザーidと用途タグを埋め込んだ署名付きトークンを発行します。
// トークン自体に有効期限は持たせません。失効は tokens 列からの削除のみです。
func (m *Manager) Issue(userID primitive.ObjectID) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":     userID.Hex(),
		"access": model.AccessAuth,
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名と用途タグを検証し、埋め込まれたユーザーidを返します。
// 署名不正・形式不正・用途タグ違いはすべて ErrInvalidToken です。
func (m *Manager) Verify(tokenString string) (primitive.ObjectID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return primitive.NilObjectID, ErrInvalidToken
	}

	if access, ok := claims["access"].(string); !ok || access != model.AccessAuth {
		return primitive.NilObjectID, ErrInvalidToken
	}

	hexID, ok := claims["id"].(string)
	if !ok {
		return primitive.NilObjectID, ErrInvalidToken
	}
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidToken
	}
	return id, nil
}
