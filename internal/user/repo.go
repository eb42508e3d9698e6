package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/suPer8Hu/corecord/internal/common"
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

// FindByID loads the acting user. A missing row means the principal is stale,
// so it is reported as common.ErrUnauthorized.
func (r *Repo) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &u, nil
}

func (r *Repo) FindByProviderID(ctx context.Context, providerID string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("provider_id = ?", providerID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *Repo) UpdateProfile(ctx context.Context, id uint64, nickName string, status models.UserStatus) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"nick_name": nickName, "status": status}).Error
}

// swapPointer sets column to `to` only if it currently holds `from` (nil meaning NULL).
// It reports whether the swap happened.
func (r *Repo) swapPointer(ctx context.Context, userID uint64, column string, from, to *uint64) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID)
	if from == nil {
		q = q.Where(column + " IS NULL")
	} else {
		q = q.Where(column+" = ?", *from)
	}
	var value any = gorm.Expr("NULL")
	if to != nil {
		value = *to
	}
	res := q.Update(column, value)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SetTmpMemo points the user's memo draft at recordID if no draft is pending.
func (r *Repo) SetTmpMemo(ctx context.Context, userID, recordID uint64) (bool, error) {
	return r.swapPointer(ctx, userID, "tmp_memo", nil, &recordID)
}

// ClearTmpMemo clears the memo draft pointer if it still points at recordID.
func (r *Repo) ClearTmpMemo(ctx context.Context, userID, recordID uint64) (bool, error) {
	return r.swapPointer(ctx, userID, "tmp_memo", &recordID, nil)
}

func (r *Repo) SetTmpChat(ctx context.Context, userID, chatRoomID uint64) (bool, error) {
	return r.swapPointer(ctx, userID, "tmp_chat", nil, &chatRoomID)
}

func (r *Repo) ClearTmpChat(ctx context.Context, userID, chatRoomID uint64) (bool, error) {
	return r.swapPointer(ctx, userID, "tmp_chat", &chatRoomID, nil)
}

// DeleteCascade removes the user and everything the user owns, children first.
func (r *Repo) DeleteCascade(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rooms := tx.Model(&models.ChatRoom{}).Select("id").Where("user_id = ?", userID)
		records := tx.Model(&models.Record{}).Select("id").Where("user_id = ?", userID)

		steps := []struct {
			name string
			run  func() error
		}{
			{"chats", func() error { return tx.Where("chat_room_id IN (?)", rooms).Delete(&models.Chat{}).Error }},
			{"abilities", func() error { return tx.Where("user_id = ?", userID).Delete(&models.Ability{}).Error }},
			{"analyses", func() error { return tx.Where("record_id IN (?)", records).Delete(&models.Analysis{}).Error }},
			{"records", func() error { return tx.Where("user_id = ?", userID).Delete(&models.Record{}).Error }},
			{"chat rooms", func() error { return tx.Where("user_id = ?", userID).Delete(&models.ChatRoom{}).Error }},
			{"folders", func() error { return tx.Where("user_id = ?", userID).Delete(&models.Folder{}).Error }},
			{"user", func() error { return tx.Delete(&models.User{}, userID).Error }},
		}
		for _, s := range steps {
			if err := s.run(); err != nil {
				return fmt.Errorf("delete %s of user %d: %w", s.name, userID, err)
			}
		}
		return nil
	})
}
