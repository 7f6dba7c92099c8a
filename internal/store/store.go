// Package store はMongoDBを使ったドキュメントストアを提供します。
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection = "users"
	todosCollection = "todos"
)

// ストア操作の失敗種別。ハンドラー側でHTTPステータスへ変換します。
var (
	ErrNotFound       = errors.New("store: document not found")
	ErrValidation     = errors.New("store: validation failed")
	ErrDuplicateEmail = errors.New("store: email already registered")
)

// Store はユーザーとToDoのコレクションをまとめたストアです。
type Store struct {
	db *mongo.Database
}

// New は Store を作成します。
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// EnsureIndexes は起動時に必要なインデックスを作成します。
// email の一意性はこのインデックスで強制します。
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *Store) users() *mongo.Collection {
	return s.db.Collection(usersCollection)
}

func (s *Store) todos() *mongo.Collection {
	return s.db.Collection(todosCollection)
}
