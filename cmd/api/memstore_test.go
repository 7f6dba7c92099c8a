package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rotemsade/todo-api/internal/model"
	"github.com/rotemsade/todo-api/internal/store"
)

// memStore はAPIテスト用のインメモリ実装です。
// 実ストアと同じ契約（一意なemail、所有者込みフィルター、$pull相当の冪等性）を守ります。
type memStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*model.User
	todos map[primitive.ObjectID]*model.Todo
}

func newMemStore() *memStore {
	return &memStore{
		users: map[primitive.ObjectID]*model.User{},
		todos: map[primitive.ObjectID]*model.Todo{},
	}
}

var _ apiStore = (*memStore)(nil)

func (s *memStore) CreateUser(_ context.Context, email, passwordHash string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is not a valid address", store.ErrValidation)
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("%w: password hash is required", store.ErrValidation)
	}
	for _, existing := range s.users {
		if existing.Email == email {
			return nil, fmt.Errorf("%w: %s", store.ErrDuplicateEmail, email)
		}
	}

	user := &model.User{
		ID:       primitive.NewObjectID(),
		Email:    email,
		Password: passwordHash,
		Tokens:   []model.TokenEntry{},
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.TrimSpace(email)
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memStore) FindByIDWithToken(_ context.Context, id primitive.ObjectID, token string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	for _, entry := range user.Tokens {
		if entry.Access == model.AccessAuth && entry.Token == token {
			return user, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memStore) AppendToken(_ context.Context, id primitive.ObjectID, entry model.TokenEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Tokens = append(user.Tokens, entry)
	return nil
}

func (s *memStore) RemoveToken(_ context.Context, id primitive.ObjectID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil
	}
	kept := user.Tokens[:0]
	for _, entry := range user.Tokens {
		if entry.Token != token {
			kept = append(kept, entry)
		}
	}
	user.Tokens = kept
	return nil
}

func (s *memStore) CreateTodo(_ context.Context, text string, creator primitive.ObjectID) (*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", store.ErrValidation)
	}
	todo := &model.Todo{
		ID:        primitive.NewObjectID(),
		Text:      text,
		CreatorID: creator,
	}
	s.todos[todo.ID] = todo
	return todo, nil
}

func (s *memStore) ListByCreator(_ context.Context, creator primitive.ObjectID) ([]model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todos := []model.Todo{}
	for _, todo := range s.todos {
		if todo.CreatorID == creator {
			todos = append(todos, *todo)
		}
	}
	return todos, nil
}

func (s *memStore) GetOwned(_ context.Context, id, creator primitive.ObjectID) (*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lockedGetOwned(id, creator)
}

func (s *memStore) UpdateOwned(_ context.Context, id, creator primitive.ObjectID, patch model.TodoPatch) (*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, err := s.lockedGetOwned(id, creator)
	if err != nil {
		return nil, err
	}
	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: text is required", store.ErrValidation)
		}
		todo.Text = text
	}
	todo.Completed = patch.Completed
	todo.CompletedAt = patch.CompletedAt
	return todo, nil
}

func (s *memStore) DeleteOwned(_ context.Context, id, creator primitive.ObjectID) (*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, err := s.lockedGetOwned(id, creator)
	if err != nil {
		return nil, err
	}
	delete(s.todos, id)
	return todo, nil
}

func (s *memStore) lockedGetOwned(id, creator primitive.ObjectID) (*model.Todo, error) {
	todo, ok := s.todos[id]
	if !ok || todo.CreatorID != creator {
		return nil, store.ErrNotFound
	}
	return todo, nil
}
