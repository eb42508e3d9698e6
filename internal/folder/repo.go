package folder

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

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) FindByID(ctx context.Context, id uint64) (*models.Folder, error) {
	var f models.Folder
	if err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFolderNotFound
		}
		return nil, fmt.Errorf("find folder %d: %w", id, err)
	}
	return &f, nil
}

// FindByTitle resolves one of the user's folders by its title.
func (r *Repo) FindByTitle(ctx context.Context, userID uint64, title string) (*models.Folder, error) {
	var f models.Folder
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND title = ?", userID, title).
		First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFolderNotFound
		}
		return nil, fmt.Errorf("find folder %q: %w", title, err)
	}
	return &f, nil
}

func (r *Repo) ExistsByTitle(ctx context.Context, userID uint64, title string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Folder{}).
		Where("user_id = ? AND title = ?", userID, title).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repo) Create(ctx context.Context, f *models.Folder) error {
	err := r.db.WithContext(ctx).Create(f).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicatedFolderTitle
	}
	return err
}

func (r *Repo) UpdateTitle(ctx context.Context, id uint64, title string) error {
	err := r.db.WithContext(ctx).Model(&models.Folder{}).Where("id = ?", id).Update("title", title).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicatedFolderTitle
	}
	return err
}

// Delete detaches the folder's records before removing it; records are never deleted here.
func (r *Repo) Delete(ctx context.Context, id uint64) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Record{}).Where("folder_id = ?", id).Update("folder_id", gorm.Expr("NULL")).Error; err != nil {
		return fmt.Errorf("detach records of folder %d: %w", id, err)
	}
	return db.Delete(&models.Folder{}, id).Error
}

// ListByUser returns the user's folders in creation order.
func (r *Repo) ListByUser(ctx context.Context, userID uint64) ([]models.Folder, error) {
	var folders []models.Folder
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}
