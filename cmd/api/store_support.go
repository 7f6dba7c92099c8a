package main

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rotemsade/todo-api/internal/config"
	"github.com/rotemsade/todo-api/internal/store"
)

// setupStore はMongoDBへ接続し、インデックスを整えたストアを返します。
// 返り値の cleanup はシャットダウン時に呼び出します。
func setupStore(cfg *config.Config) (*store.Store, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURL))
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Printf("failed to disconnect from store: %v", err)
		}
	}

	if err := client.Ping(ctx, nil); err != nil {
		cleanup()
		return nil, nil, err
	}

	st := store.New(client.Database(cfg.MongoDatabase))
	if err := st.EnsureIndexes(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return st, cleanup, nil
}
