// Package model はドメインモデルを定義する。
package model

import "time"

// Todo はユーザーが所有するTodoレコードを表す。
// IDはドキュメントストアが採番するためFirestoreドキュメントには含めない。
type Todo struct {
	ID          string    `firestore:"-" json:"id"`
	UserID      string    `firestore:"userId" json:"userId"`
	Title       string    `firestore:"title" json:"title"`
	Description string    `firestore:"description" json:"description"`
	DueDate     string    `firestore:"dueDate,omitempty" json:"dueDate,omitempty"`
	Completed   bool      `firestore:"completed" json:"completed"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt" json:"updatedAt"`
}
