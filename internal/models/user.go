package models

import "time"

type UserStatus string

const (
	StatusUniversityStudent UserStatus = "UNIVERSITY_STUDENT"
	StatusGraduateStudent   UserStatus = "GRADUATE_STUDENT"
	StatusJobSeeker         UserStatus = "JOB_SEEKER"
	StatusWorker            UserStatus = "WORKER"
	StatusOther             UserStatus = "OTHER"
)

func (s UserStatus) Valid() bool {
	switch s {
	case StatusUniversityStudent, StatusGraduateStudent, StatusJobSeeker, StatusWorker, StatusOther:
		return true
	}
	return false
}

// User owns folders, records, chat rooms and abilities.
// TmpMemo and TmpChat point at the single pending memo draft / chat room draft, if any.
type User struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement" json:"user_id"`
	ProviderID string     `gorm:"type:varchar(128);uniqueIndex;not null" json:"-"`
	NickName   string     `gorm:"type:varchar(10);not null" json:"nickname"`
	Status     UserStatus `gorm:"type:varchar(32);not null" json:"status"`
	TmpMemo    *uint64    `json:"-"`
	TmpChat    *uint64    `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }
