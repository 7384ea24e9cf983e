package model

// UserMirror はIdPが管理するユーザー属性のドキュメントストア側ミラーレコード。
// ドキュメントIDにはIdPが採番したuidをそのまま使用する。
type UserMirror struct {
	UID   string `firestore:"-" json:"uid"`
	Email string `firestore:"email" json:"email"`
	Name  string `firestore:"name" json:"name"`
}
