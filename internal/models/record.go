package models

import "time"

type RecordType string

const (
	RecordTypeMemo RecordType = "MEMO"
	RecordTypeChat RecordType = "CHAT"
)

func (t RecordType) Valid() bool {
	return t == RecordTypeMemo || t == RecordTypeChat
}

// Record is a user-authored experience entry. Temporary records are memo drafts
// referenced by User.TmpMemo and never show up in listings.
type Record struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement"`
	UserID     uint64     `gorm:"index;not null"`
	FolderID   *uint64    `gorm:"index"`
	Folder     *Folder    `gorm:"foreignKey:FolderID;constraint:OnDelete:SET NULL"`
	ChatRoomID *uint64    `gorm:"index"`
	Type       RecordType `gorm:"type:varchar(8);not null"`
	Title      string     `gorm:"type:varchar(50);not null"`
	Content    string     `gorm:"type:text;not null"`
	Temporary  bool       `gorm:"index;not null;default:false"`
	Analysis   *Analysis  `gorm:"foreignKey:RecordID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Record) TableName() string { return "records" }

func (r *Record) OwnerID() uint64 {
	if r == nil {
		return 0
	}
	return r.UserID
}

// FolderTitle is empty for records that are not filed in a folder.
func (r *Record) FolderTitle() string {
	if r.Folder == nil {
		return ""
	}
	return r.Folder.Title
}
