// Package todos はToDo項目のCRUDハンドラーを提供します。
// すべての操作は認証済みユーザーを所有者としてクエリを限定します。
package todos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rotemsade/todo-api/internal/auth"
	"github.com/rotemsade/todo-api/internal/model"
	"github.com/rotemsade/todo-api/internal/store"
)

// Store はToDo操作に必要なストア機能です。
type Store interface {
	CreateTodo(ctx context.Context, text string, creator primitive.ObjectID) (*model.Todo, error)
	ListByCreator(ctx context.Context, creator primitive.ObjectID) ([]model.Todo, error)
	GetOwned(ctx context.Context, id, creator primitive.ObjectID) (*model.Todo, error)
	UpdateOwned(ctx context.Context, id, creator primitive.ObjectID, patch model.TodoPatch) (*model.Todo, error)
	DeleteOwned(ctx context.Context, id, creator primitive.ObjectID) (*model.Todo, error)
}

type createRequest struct {
	Text string `json:"text"`
}

// patchRequest は PATCH で受け付けるフィールドの許可リストです。
// completedAt はここに含めず、サーバー側で導出します。
// completed は真偽値以外も受け取れるよう生のまま保持し、導出時に解釈します。
type patchRequest struct {
	Text      *string         `json:"text"`
	Completed json.RawMessage `json:"completed"`
}

// CreateHandler は POST /todos のハンドラーを返します。
func CreateHandler(svc Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 本文なし・壊れたJSONは text 未指定と同じ扱いでストア側の検証に落とす
		var req createRequest
		_ = c.ShouldBindJSON(&req)

		todo, err := svc.CreateTodo(c.Request.Context(), req.Text, auth.CurrentUser(c).ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, todo)
	}
}

// ListHandler は GET /todos のハンドラーを返します。
func ListHandler(svc Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		todos, err := svc.ListByCreator(c.Request.Context(), auth.CurrentUser(c).ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"todos": todos})
	}
}

// GetHandler は GET /todos/:id のハンドラーを返します。
func GetHandler(svc Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		todo, err := svc.GetOwned(c.Request.Context(), id, auth.CurrentUser(c).ID)
		if err != nil {
			respondStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"todo": todo})
	}
}

// UpdateHandler は PATCH /todos/:id のハンドラーを返します。
// completed の真偽に応じて completedAt を設定・消去します。クライアントが
// completedAt を送ってきても採用しません。
func UpdateHandler(svc Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		// 本文なし・壊れたJSONはフィールド未指定として扱う
		var req patchRequest
		_ = c.ShouldBindJSON(&req)

		// completed が真偽値の true 以外（未指定・非真偽値を含む）の場合は
		// 未完了へ倒し、completedAt を消去する
		var completedFlag bool
		completed := json.Unmarshal(req.Completed, &completedFlag) == nil && completedFlag
		patch := model.TodoPatch{
			Text:      req.Text,
			Completed: completed,
		}
		if completed {
			now := time.Now().UnixMilli()
			patch.CompletedAt = &now
		}

		todo, err := svc.UpdateOwned(c.Request.Context(), id, auth.CurrentUser(c).ID, patch)
		if err != nil {
			respondStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"todo": todo})
	}
}

// DeleteHandler は DELETE /todos/:id のハンドラーを返します。
func DeleteHandler(svc Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		todo, err := svc.DeleteOwned(c.Request.Context(), id, auth.CurrentUser(c).ID)
		if err != nil {
			respondStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"todo": todo})
	}
}

// parseID はパスパラメーターをObjectIDへ変換します。
// 形式不正のidは存在しないidと区別せず 404 で返します。
func parseID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return primitive.NilObjectID, false
	}
	return id, true
}

func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, store.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.Status(http.StatusBadRequest)
	}
}

var _ Store = (*store.Store)(nil)
