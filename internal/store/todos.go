package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rotemsade/todo-api/internal/model"
)

// CreateTodo は新しいToDoを保存します。本文は必須です。
func (s *Store) CreateTodo(ctx context.Context, text string, creator primitive.ObjectID) (*model.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrValidation)
	}

	todo := &model.Todo{
		ID:          primitive.NewObjectID(),
		Text:        text,
		Completed:   false,
		CompletedAt: nil,
		CreatorID:   creator,
	}

	if _, err := s.todos().InsertOne(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// ListByCreator は所有者のToDoを全件返します。
func (s *Store) ListByCreator(ctx context.Context, creator primitive.ObjectID) ([]model.Todo, error) {
	cursor, err := s.todos().Find(ctx, bson.M{"creatorId": creator})
	if err != nil {
		return nil, err
	}

	todos := []model.Todo{}
	if err := cursor.All(ctx, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

// GetOwned は id と所有者の両方が一致するToDoを返します。
// 他人のToDoは存在しないものとして扱います。
func (s *Store) GetOwned(ctx context.Context, id, creator primitive.ObjectID) (*model.Todo, error) {
	var todo model.Todo
	err := s.todos().FindOne(ctx, ownedFilter(id, creator)).Decode(&todo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &todo, nil
}

// UpdateOwned は所有チェックと更新を単一の findOneAndUpdate で行い、
// 更新後のドキュメントを返します。
func (s *Store) UpdateOwned(ctx context.Context, id, creator primitive.ObjectID, patch model.TodoPatch) (*model.Todo, error) {
	set := bson.M{
		"completed":   patch.Completed,
		"completedAt": patch.CompletedAt,
	}
	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: text is required", ErrValidation)
		}
		set["text"] = text
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var todo model.Todo
	err := s.todos().FindOneAndUpdate(ctx, ownedFilter(id, creator), bson.M{"$set": set}, opts).Decode(&todo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &todo, nil
}

// DeleteOwned は所有チェックと削除を単一の findOneAndDelete で行い、
// 削除したドキュメントを返します。
func (s *Store) DeleteOwned(ctx context.Context, id, creator primitive.ObjectID) (*model.Todo, error) {
	var todo model.Todo
	err := s.todos().FindOneAndDelete(ctx, ownedFilter(id, creator)).Decode(&todo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &todo, nil
}

// ownedFilter は主キーと所有者を同時に条件へ含めるフィルターです。
// 存在確認と操作を分けると所有権チェックに隙間ができるため、必ず1クエリで行います。
func ownedFilter(id, creator primitive.ObjectID) bson.M {
	return bson.M{
		"_id":       id,
		"creatorId": creator,
	}
}
