package models

import "time"

type Folder struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"folder_id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:uniq_folder_user_title,priority:1" json:"-"`
	Title     string    `gorm:"type:varchar(15);not null;uniqueIndex:uniq_folder_user_title,priority:2" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (Folder) TableName() string { return "folders" }

func (f *Folder) OwnerID() uint64 {
	if f == nil {
		return 0
	}
	return f.UserID
}
