// Package users はユーザー登録・ログイン・ログアウトのHTTPハンドラーを提供します。
package users

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rotemsade/todo-api/internal/auth"
	"github.com/rotemsade/todo-api/internal/model"
	"github.com/rotemsade/todo-api/internal/store"
)

// パスワードの最小文字数。ハッシュ化前の平文に対して検査します。
const minPasswordLength = 6

// Store はユーザー操作に必要なストア機能です。
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	AppendToken(ctx context.Context, id primitive.ObjectID, entry model.TokenEntry) error
	RemoveToken(ctx context.Context, id primitive.ObjectID, token string) error
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterHandler は POST /users のハンドラーを返します。
// 成功時はユーザー本体を返し、発行済みトークンを x-auth ヘッダーに載せます。
func RegisterHandler(svc Store, tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}
		if len(req.Password) < minPasswordLength {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters"})
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, err := svc.CreateUser(c.Request.Context(), req.Email, hash)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := issueSession(c, svc, tokens, user); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// LoginHandler は POST /users/login のハンドラーを返します。
// 資格情報の不一致は理由を区別せず 401 の空ボディで返します。
func LoginHandler(svc Store, tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusUnauthorized)
			return
		}

		user, err := svc.FindByEmail(c.Request.Context(), req.Email)
		if err != nil {
			c.Status(http.StatusUnauthorized)
			return
		}
		if !auth.CheckPassword(req.Password, user.Password) {
			c.Status(http.StatusUnauthorized)
			return
		}

		if err := issueSession(c, svc, tokens, user); err != nil {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// MeHandler は GET /users/me のハンドラーを返します。
func MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, auth.CurrentUser(c))
	}
}

// LogoutHandler は DELETE /users/me/token のハンドラーを返します。
// 提示されたトークンそのものを tokens 列から取り除き、即時に失効させます。
func LogoutHandler(svc Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if err := svc.RemoveToken(c.Request.Context(), user.ID, auth.CurrentToken(c)); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	}
}

// issueSession はトークンを発行してユーザーに追記し、レスポンスヘッダーへ載せます。
func issueSession(c *gin.Context, svc Store, tokens *auth.Manager, user *model.User) error {
	token, err := tokens.Issue(user.ID)
	if err != nil {
		return err
	}
	entry := model.TokenEntry{Access: model.AccessAuth, Token: token}
	if err := svc.AppendToken(c.Request.Context(), user.ID, entry); err != nil {
		return err
	}
	c.Header(auth.HeaderName, token)
	return nil
}

var _ Store = (*store.Store)(nil)
