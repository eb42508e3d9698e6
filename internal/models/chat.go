package models

import "time"

type ChatRoom struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"chat_room_id"`
	UserID    uint64    `gorm:"index;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ChatRoom) TableName() string { return "chat_rooms" }

func (r *ChatRoom) OwnerID() uint64 {
	if r == nil {
		return 0
	}
	return r.UserID
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Chat struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"chat_id"`
	ChatRoomID uint64    `gorm:"index;not null" json:"-"`
	Role       string    `gorm:"type:varchar(16);not null" json:"role"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Chat) TableName() string { return "chats" }
