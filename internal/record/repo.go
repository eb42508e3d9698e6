package record

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

func (r *Repo) Create(ctx context.Context, rec *models.Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repo) find(ctx context.Context, id uint64, temporary bool) (*models.Record, error) {
	var rec models.Record
	if err := r.db.WithContext(ctx).
		Preload("Folder").
		Preload("Analysis").
		Where("temporary = ?", temporary).
		First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("find record %d: %w", id, err)
	}
	return &rec, nil
}

// FindByID loads a regular record; drafts are not visible here.
func (r *Repo) FindByID(ctx context.Context, id uint64) (*models.Record, error) {
	return r.find(ctx, id, false)
}

func (r *Repo) FindTmpByID(ctx context.Context, id uint64) (*models.Record, error) {
	return r.find(ctx, id, true)
}

func (r *Repo) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Record{}, id).Error
}

func (r *Repo) UpdateFolder(ctx context.Context, id, folderID uint64) error {
	return r.db.WithContext(ctx).Model(&models.Record{}).Where("id = ?", id).Update("folder_id", folderID).Error
}

// List pages through the user's records by id, newest first. A nil folderID
// spans all folders; lastID 0 starts from the newest record.
func (r *Repo) List(ctx context.Context, userID uint64, folderID *uint64, lastID uint64, limit int) ([]models.Record, error) {
	q := r.db.WithContext(ctx).
		Preload("Folder").
		Preload("Analysis").
		Where("user_id = ? AND temporary = ?", userID, false)
	if folderID != nil {
		q = q.Where("folder_id = ?", *folderID)
	}
	if lastID > 0 {
		q = q.Where("id < ?", lastID)
	}
	var recs []models.Record
	if err := q.Order("id DESC").Limit(limit).Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// KeywordHit is a record whose analysis carries the searched keyword.
type KeywordHit struct {
	Record         models.Record
	AbilityContent string
}

// ListByKeyword pages like List over records tagged with keyword.
func (r *Repo) ListByKeyword(ctx context.Context, userID uint64, keyword models.Keyword, lastID uint64, limit int) ([]KeywordHit, error) {
	q := r.db.WithContext(ctx).Model(&models.Ability{}).
		Select("analyses.record_id AS record_id, abilities.content AS content").
		Joins("JOIN analyses ON analyses.id = abilities.analysis_id").
		Where("abilities.user_id = ? AND abilities.keyword = ?", userID, keyword)
	if lastID > 0 {
		q = q.Where("analyses.record_id < ?", lastID)
	}
	var rows []struct {
		RecordID uint64
		Content  string
	}
	if err := q.Order("analyses.record_id DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.RecordID)
	}
	var recs []models.Record
	if err := r.db.WithContext(ctx).
		Preload("Folder").
		Preload("Analysis").
		Where("id IN ?", ids).
		Find(&recs).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint64]models.Record, len(recs))
	for _, rec := range recs {
		byID[rec.ID] = rec
	}

	out := make([]KeywordHit, 0, len(rows))
	for _, row := range rows {
		rec, ok := byID[row.RecordID]
		if !ok {
			continue
		}
		out = append(out, KeywordHit{Record: rec, AbilityContent: row.Content})
	}
	return out, nil
}
