package user

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/suPer8Hu/corecord/internal/models"
	"gorm.io/gorm"
)

const maxNickNameLength = 10

var nickNamePattern = regexp.MustCompile(`^[a-zA-Z0-9가-힣\s]*$`)

// ValidateNickName accepts 1-10 hangul, latin letters, digits or spaces.
func ValidateNickName(nickName string) error {
	if strings.TrimSpace(nickName) == "" || utf8.RuneCountInString(nickName) > maxNickNameLength {
		return ErrInvalidNickName
	}
	if !nickNamePattern.MatchString(nickName) {
		return ErrInvalidNickName
	}
	return nil
}

// TokenRevoker drops every session a user holds.
type TokenRevoker interface {
	RevokeUser(ctx context.Context, userID uint64) error
}

type Service struct {
	db      *gorm.DB
	repo    *Repo
	revoker TokenRevoker
}

func NewService(db *gorm.DB, revoker TokenRevoker) *Service {
	return &Service{db: db, repo: NewRepo(db), revoker: revoker}
}

type Info struct {
	UserID   uint64            `json:"user_id"`
	NickName string            `json:"nickname"`
	Status   models.UserStatus `json:"status"`
}

func toInfo(u *models.User) *Info {
	return &Info{UserID: u.ID, NickName: u.NickName, Status: u.Status}
}

func (s *Service) GetUserInfo(ctx context.Context, userID uint64) (*Info, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toInfo(u), nil
}

// UpdateUserInfo changes whichever of nickName / status is non-nil.
func (s *Service) UpdateUserInfo(ctx context.Context, userID uint64, nickName *string, status *models.UserStatus) (*Info, error) {
	if nickName != nil {
		if err := ValidateNickName(*nickName); err != nil {
			return nil, err
		}
	}
	if status != nil && !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var out *Info
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		u, err := repo.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if nickName != nil {
			u.NickName = *nickName
		}
		if status != nil {
			u.Status = *status
		}
		if err := repo.UpdateProfile(ctx, u.ID, u.NickName, u.Status); err != nil {
			return err
		}
		out = toInfo(u)
		return nil
	})
	return out, err
}

// DeleteUser removes the account with everything it owns, then revokes its refresh token.
func (s *Service) DeleteUser(ctx context.Context, userID uint64) error {
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.DeleteCascade(ctx, userID); err != nil {
		return err
	}
	if s.revoker != nil {
		if err := s.revoker.RevokeUser(ctx, userID); err != nil {
			// the account is gone; a leftover token can no longer resolve to a user
			log.Warn().Err(err).Uint64("user_id", userID).Msg("revoke tokens of deleted user")
		}
	}
	return nil
}
