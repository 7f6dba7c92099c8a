package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rotemsade/todo-api/internal/model"
)

// CreateUser は新規ユーザーを保存します。
// passwordHash は呼び出し側でハッシュ化済みであることを前提とします。
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is not a valid address", ErrValidation)
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("%w: password hash is required", ErrValidation)
	}

	user := &model.User{
		ID:       primitive.NewObjectID(),
		Email:    email,
		Password: passwordHash,
		Tokens:   []model.TokenEntry{},
	}

	if _, err := s.users().InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
		}
		return nil, err
	}
	return user, nil
}

// FindByEmail はメールアドレスでユーザーを検索します。
func (s *Store) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.users().FindOne(ctx, bson.M{"email": strings.TrimSpace(email)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByIDWithToken は、id が一致しかつ tokens 列にこのトークンそのものを
// 保持しているユーザーを検索します。ログアウト済みトークンはここで弾かれます。
func (s *Store) FindByIDWithToken(ctx context.Context, id primitive.ObjectID, token string) (*model.User, error) {
	filter := bson.M{
		"_id": id,
		"tokens": bson.M{"$elemMatch": bson.M{
			"access": model.AccessAuth,
			"token":  token,
		}},
	}

	var user model.User
	if err := s.users().FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// AppendToken はユーザーの tokens 列にセッショントークンを追加します。
func (s *Store) AppendToken(ctx context.Context, id primitive.ObjectID, entry model.TokenEntry) error {
	result, err := s.users().UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"tokens": entry},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveToken は tokens 列から一致するトークンを取り除きます。
// 存在しないトークンの削除は成功扱いです（冪等）。
func (s *Store) RemoveToken(ctx context.Context, id primitive.ObjectID, token string) error {
	_, err := s.users().UpdateByID(ctx, id, bson.M{
		"$pull": bson.M{"tokens": bson.M{"token": token}},
	})
	return err
}
