package models

import (
	"strings"
	"time"
)

type Analysis struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	RecordID  uint64    `gorm:"uniqueIndex;not null"`
	Content   string    `gorm:"type:text;not null"`
	Comment   string    `gorm:"type:text;not null"`
	Abilities []Ability `gorm:"foreignKey:AnalysisID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Analysis) TableName() string { return "analyses" }

type Ability struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	AnalysisID uint64    `gorm:"index;not null"`
	UserID     uint64    `gorm:"index;not null"`
	Keyword    Keyword   `gorm:"type:varchar(32);index;not null"`
	Content    string    `gorm:"type:text;not null"`
	CreatedAt  time.Time
}

func (Ability) TableName() string { return "abilities" }

// Keyword is an ability tag extracted from a record.
type Keyword string

const (
	KeywordCommunication  Keyword = "커뮤니케이션"
	KeywordLeadership     Keyword = "리더십"
	KeywordProblemSolving Keyword = "문제해결"
	KeywordCollaboration  Keyword = "협업"
	KeywordAnalysis       Keyword = "분석력"
	KeywordCreativity     Keyword = "창의성"
	KeywordResponsibility Keyword = "책임감"
	KeywordAdaptability   Keyword = "적응력"
	KeywordPlanning       Keyword = "기획력"
	KeywordExecution      Keyword = "실행력"
)

var Keywords = []Keyword{
	KeywordCommunication,
	KeywordLeadership,
	KeywordProblemSolving,
	KeywordCollaboration,
	KeywordAnalysis,
	KeywordCreativity,
	KeywordResponsibility,
	KeywordAdaptability,
	KeywordPlanning,
	KeywordExecution,
}

// ParseKeyword matches v against the keyword catalog, ignoring surrounding spaces.
func ParseKeyword(v string) (Keyword, bool) {
	v = strings.TrimSpace(v)
	for _, k := range Keywords {
		if string(k) == v {
			return k, true
		}
	}
	return "", false
}
