package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rotemsade/todo-api/internal/model"
)

type stubResolver struct {
	user     *model.User
	err      error
	gotID    primitive.ObjectID
	gotToken string
	calls    int
}

func (s *stubResolver) FindByIDWithToken(_ context.Context, id primitive.ObjectID, token string) (*model.User, error) {
	s.calls++
	s.gotID = id
	s.gotToken = token
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func newAuthTestRouter(m *Manager, resolver UserResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", RequireAuth(m, resolver), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"email": CurrentUser(c).Email,
			"token": CurrentToken(c),
		})
	})
	return router
}

func TestRequireAuthMissingHeader(t *testing.T) {
	m := NewManager("test-secret")
	resolver := &stubResolver{}
	router := newAuthTestRouter(m, resolver)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if resolver.calls != 0 {
		t.Fatal("resolver must not be called without a token")
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	m := NewManager("test-secret")
	resolver := &stubResolver{}
	router := newAuthTestRouter(m, resolver)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(HeaderName, "garbage")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if resolver.calls != 0 {
		t.Fatal("resolver must not be called for an invalid token")
	}
}

func TestRequireAuthRevokedToken(t *testing.T) {
	m := NewManager("test-secret")
	userID := primitive.NewObjectID()
	token, err := m.Issue(userID)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	resolver := &stubResolver{err: errors.New("no user holds this token")}
	router := newAuthTestRouter(m, resolver)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(HeaderName, token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("401 body must be empty, got %q", rec.Body.String())
	}
}

func TestRequireAuthSuccess(t *testing.T) {
	m := NewManager("test-secret")
	userID := primitive.NewObjectID()
	token, err := m.Issue(userID)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	resolver := &stubResolver{user: &model.User{ID: userID, Email: "a@example.com"}}
	router := newAuthTestRouter(m, resolver)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(HeaderName, token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if resolver.gotID != userID {
		t.Fatalf("resolver got id %s, want %s", resolver.gotID.Hex(), userID.Hex())
	}
	if resolver.gotToken != token {
		t.Fatal("resolver must receive the exact raw token")
	}
}
