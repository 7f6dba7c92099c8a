package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Todo はToDo項目のドキュメントです。
// CompletedAt はエポックミリ秒で、未完了の間は常に null です。
type Todo struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Text        string             `bson:"text" json:"text"`
	Completed   bool               `bson:"completed" json:"completed"`
	CompletedAt *int64             `bson:"completedAt" json:"completedAt"`
	CreatorID   primitive.ObjectID `bson:"creatorId" json:"creatorId"`
}

// TodoPatch はToDo更新時に適用する差分です。
// Text が nil の場合は本文を変更しません。CompletedAt はハンドラー側で導出した値を
// そのまま保存します（クライアント入力は採用しません）。
type TodoPatch struct {
	Text        *string
	Completed   bool
	CompletedAt *int64
}
