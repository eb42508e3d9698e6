package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/suPer8Hu/corecord/internal/models"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

// NewRepo binds a repo to db, which may be a transaction.
func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Create inserts the analysis together with its abilities.
func (r *Repo) Create(ctx context.Context, a *models.Analysis) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *Repo) FindByID(ctx context.Context, id uint64) (*models.Analysis, error) {
	var a models.Analysis
	if err := r.db.WithContext(ctx).
		Preload("Abilities", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("find analysis %d: %w", id, err)
	}
	return &a, nil
}

// FindRecord loads a non-draft record with its folder.
func (r *Repo) FindRecord(ctx context.Context, id uint64) (*models.Record, error) {
	var rec models.Record
	if err := r.db.WithContext(ctx).
		Preload("Folder").
		Where("temporary = ?", false).
		First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("find record %d: %w", id, err)
	}
	return &rec, nil
}

// DeleteByRecordID removes the record's analysis and abilities, if any.
func (r *Repo) DeleteByRecordID(ctx context.Context, recordID uint64) error {
	db := r.db.WithContext(ctx)
	analyses := db.Model(&models.Analysis{}).Select("id").Where("record_id = ?", recordID)
	if err := db.Where("analysis_id IN (?)", analyses).Delete(&models.Ability{}).Error; err != nil {
		return fmt.Errorf("delete abilities of record %d: %w", recordID, err)
	}
	return db.Where("record_id = ?", recordID).Delete(&models.Analysis{}).Error
}

type KeywordCount struct {
	Keyword models.Keyword
	Count   int64
}

// CountKeywords tallies the user's abilities per keyword, most frequent first.
func (r *Repo) CountKeywords(ctx context.Context, userID uint64) ([]KeywordCount, error) {
	var out []KeywordCount
	if err := r.db.WithContext(ctx).Model(&models.Ability{}).
		Select("keyword, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("keyword").
		Order("count DESC, keyword ASC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) CreateJob(ctx context.Context, job *models.AnalysisJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *Repo) FindJob(ctx context.Context, id string) (*models.AnalysisJob, error) {
	var job models.AnalysisJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("find job %s: %w", id, err)
	}
	return &job, nil
}

func (r *Repo) UpdateJob(ctx context.Context, id string, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.AnalysisJob{}).Where("id = ?", id).Updates(updates).Error
}
