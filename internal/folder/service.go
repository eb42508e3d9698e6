package folder

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/suPer8Hu/corecord/internal/common"
	"github.com/suPer8Hu/corecord/internal/models"
	"github.com/suPer8Hu/corecord/internal/user"
	"gorm.io/gorm"
)

const maxTitleLength = 15

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type Item struct {
	FolderID uint64 `json:"folder_id"`
	Title    string `json:"title"`
}

func toItems(folders []models.Folder) []Item {
	out := make([]Item, 0, len(folders))
	for _, f := range folders {
		out = append(out, Item{FolderID: f.ID, Title: f.Title})
	}
	return out
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyFolderTitle
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return ErrOverflowFolderTitle
	}
	return nil
}

func checkDuplicate(ctx context.Context, repo *Repo, userID uint64, title string) error {
	exists, err := repo.ExistsByTitle(ctx, userID, title)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicatedFolderTitle
	}
	return nil
}

// CreateFolder adds a folder and returns all of the user's folders in creation order.
func (s *Service) CreateFolder(ctx context.Context, userID uint64, title string) ([]Item, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	var out []Item
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		if _, err := user.NewRepo(tx).FindByID(ctx, userID); err != nil {
			return err
		}
		if err := checkDuplicate(ctx, repo, userID, title); err != nil {
			return err
		}
		if err := repo.Create(ctx, &models.Folder{UserID: userID, Title: title}); err != nil {
			return err
		}
		folders, err := repo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		out = toItems(folders)
		return nil
	})
	return out, err
}

// DeleteFolder removes an owned folder; its records stay, unfiled.
func (s *Service) DeleteFolder(ctx context.Context, userID, folderID uint64) ([]Item, error) {
	var out []Item
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		if _, err := user.NewRepo(tx).FindByID(ctx, userID); err != nil {
			return err
		}
		f, err := repo.FindByID(ctx, folderID)
		if err != nil {
			return err
		}
		if err := common.AssertOwner(f, userID, ErrFolderUnauthorized); err != nil {
			return err
		}
		if err := repo.Delete(ctx, f.ID); err != nil {
			return err
		}
		folders, err := repo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		out = toItems(folders)
		return nil
	})
	return out, err
}

func (s *Service) UpdateFolder(ctx context.Context, userID, folderID uint64, title string) ([]Item, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	var out []Item
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		if _, err := user.NewRepo(tx).FindByID(ctx, userID); err != nil {
			return err
		}
		f, err := repo.FindByID(ctx, folderID)
		if err != nil {
			return err
		}
		if err := common.AssertOwner(f, userID, ErrFolderUnauthorized); err != nil {
			return err
		}
		if err := checkDuplicate(ctx, repo, userID, title); err != nil {
			return err
		}
		if err := repo.UpdateTitle(ctx, f.ID, title); err != nil {
			return err
		}
		folders, err := repo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		out = toItems(folders)
		return nil
	})
	return out, err
}

func (s *Service) ListFolders(ctx context.Context, userID uint64) ([]Item, error) {
	if _, err := user.NewRepo(s.db).FindByID(ctx, userID); err != nil {
		return nil, err
	}
	folders, err := NewRepo(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toItems(folders), nil
}
