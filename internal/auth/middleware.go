package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rotemsade/todo-api/internal/model"
)

// HeaderName はセッショントークンを運ぶリクエストヘッダーです。
const HeaderName = "x-auth"

// ハンドラー間で認証済みユーザーと生トークンを共有するためのキーです。
const (
	ContextUserKey  = "auth.user"
	ContextTokenKey = "auth.token"
)

// UserResolver は検証済みトークンをユーザーへ解決します。
// 該当ユーザーが存在しない（ログアウト済みなど）場合はエラーを返します。
type UserResolver interface {
	FindByIDWithToken(ctx context.Context, id primitive.ObjectID, token string) (*model.User, error)
}

// RequireAuth は x-auth ヘッダーを検証するミドルウェアを返します。
// 署名検証を通過しても、そのトークンを現在も保持しているユーザーが
// ストアに存在しなければ 401 で打ち切ります。
func RequireAuth(m *Manager, resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader(HeaderName)
		if tokenString == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		userID, err := m.Verify(tokenString)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		user, err := resolver.FindByIDWithToken(c.Request.Context(), userID, tokenString)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextTokenKey, tokenString)
		c.Next()
	}
}

// CurrentUser はミドルウェアが解決したユーザーを取り出します。
func CurrentUser(c *gin.Context) *model.User {
	user, _ := c.Get(ContextUserKey)
	resolved, _ := user.(*model.User)
	return resolved
}

// CurrentToken はこのリクエストで提示された生トークンを取り出します。
// ログアウト時に削除対象を特定するために使います。
func CurrentToken(c *gin.Context) string {
	token, _ := c.Get(ContextTokenKey)
	raw, _ := token.(string)
	return raw
}
