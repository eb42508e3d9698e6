package models

import "time"

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// AnalysisJob asks the worker to regenerate the analysis of one record.
type AnalysisJob struct {
	ID string `gorm:"primaryKey;size:26" json:"job_id"` // ULID length

	UserID   uint64 `gorm:"index;not null" json:"-"`
	RecordID uint64 `gorm:"index;not null" json:"record_id"`

	Status JobStatus `gorm:"type:varchar(16);index;not null" json:"status"`

	// Filled when succeeded
	AnalysisID *uint64 `json:"analysis_id"`

	// Filled when failed
	Error *string `gorm:"type:text" json:"error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AnalysisJob) TableName() string { return "analysis_jobs" }

func (j *AnalysisJob) OwnerID() uint64 {
	if j == nil {
		return 0
	}
	return j.UserID
}
