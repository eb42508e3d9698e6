package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/suPer8Hu/corecord/internal/config"
	"github.com/suPer8Hu/corecord/internal/models"
	"github.com/suPer8Hu/corecord/internal/user"
	"gorm.io/gorm"
)

// RefreshTokenTTL is the lifetime of a refresh token, in Redis and in the cookie.
const RefreshTokenTTL = 604800 * time.Second

// TokenStore keeps refresh and tmp tokens; lookups of unknown tokens return redis.Nil.
type TokenStore interface {
	SaveRefreshToken(ctx context.Context, userID uint64, token string, ttl time.Duration) error
	GetRefreshTokenUser(ctx context.Context, token string) (uint64, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	RevokeUser(ctx context.Context, userID uint64) error
	SaveTmpToken(ctx context.Context, token string, userID uint64, ttl time.Duration) error
	ConsumeTmpToken(ctx context.Context, token string) (uint64, error)
}

type Service struct {
	db    *gorm.DB
	store TokenStore

	secret      string
	accessTTL   time.Duration
	registerTTL time.Duration
	tmpTTL      time.Duration
}

func NewService(db *gorm.DB, store TokenStore, cfg config.Config) *Service {
	return &Service{
		db:          db,
		store:       store,
		secret:      cfg.JWTSecret,
		accessTTL:   cfg.AccessTokenTTL,
		registerTTL: cfg.RegisterTokenTTL,
		tmpTTL:      cfg.TmpTokenTTL,
	}
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"-"`
}

// Session is the outcome of an identity provider login: a tmp token for known
// users, a register token for new ones.
type Session struct {
	TmpToken      string `json:"tmp_token,omitempty"`
	RegisterToken string `json:"register_token,omitempty"`
}

// BeginSession is called once the identity provider has vouched for providerID.
func (s *Service) BeginSession(ctx context.Context, providerID string) (*Session, error) {
	if providerID == "" {
		return nil, errors.New("auth: empty provider id")
	}
	u, err := user.NewRepo(s.db).FindByProviderID(ctx, providerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		token, err := signRegisterToken(providerID, s.secret, s.registerTTL)
		if err != nil {
			return nil, err
		}
		return &Session{RegisterToken: token}, nil
	}
	if err != nil {
		return nil, err
	}

	tmp := uuid.NewString()
	if err := s.store.SaveTmpToken(ctx, tmp, u.ID, s.tmpTTL); err != nil {
		return nil, fmt.Errorf("save tmp token: %w", err)
	}
	return &Session{TmpToken: tmp}, nil
}

// issue signs a fresh token pair and makes the refresh token the user's only valid one.
func (s *Service) issue(ctx context.Context, userID uint64) (*Tokens, error) {
	access, err := SignAccessToken(userID, s.secret, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := signRefreshToken(userID, s.secret, RefreshTokenTTL)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveRefreshToken(ctx, userID, refresh, RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueTokens exchanges a single-use tmp token for a token pair.
func (s *Service) IssueTokens(ctx context.Context, tmpToken string) (*Tokens, error) {
	if tmpToken == "" {
		return nil, ErrInvalidTmpToken
	}
	uid, err := s.store.ConsumeTmpToken(ctx, tmpToken)
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidTmpToken
	}
	if err != nil {
		return nil, err
	}
	if _, err := user.NewRepo(s.db).FindByID(ctx, uid); err != nil {
		return nil, err
	}
	return s.issue(ctx, uid)
}

// Register creates the user named by a register token and signs it in.
func (s *Service) Register(ctx context.Context, registerToken, nickName string, status models.UserStatus) (*Tokens, error) {
	if err := user.ValidateNickName(nickName); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, user.ErrInvalidStatus
	}
	claims, err := parse(registerToken, s.secret, kindRegister)
	if err != nil || claims.ProviderID == "" {
		return nil, ErrInvalidRegisterToken
	}

	u := &models.User{ProviderID: claims.ProviderID, NickName: nickName, Status: status}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := user.NewRepo(tx)
		_, err := repo.FindByProviderID(ctx, claims.ProviderID)
		if err == nil {
			return ErrAlreadyRegistered
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := repo.Create(ctx, u); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRegistered
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint64("user_id", u.ID).Msg("user registered")
	return s.issue(ctx, u.ID)
}

// Reissue trades a valid refresh token for a new pair; the old refresh token stops working.
func (s *Service) Reissue(ctx context.Context, refreshToken string) (*Tokens, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	claims, err := parse(refreshToken, s.secret, kindRefresh)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	uid, err := s.store.GetRefreshTokenUser(ctx, refreshToken)
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, err
	}
	if uid != claims.UserID {
		return nil, ErrInvalidRefreshToken
	}
	if _, err := user.NewRepo(s.db).FindByID(ctx, uid); err != nil {
		return nil, err
	}
	return s.issue(ctx, uid)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.store.DeleteRefreshToken(ctx, refreshToken)
}

func (s *Service) RevokeUser(ctx context.Context, userID uint64) error {
	return s.store.RevokeUser(ctx, userID)
}

// Authenticate resolves a bearer access token to its user id.
func (s *Service) Authenticate(accessToken string) (uint64, error) {
	uid, err := ParseAccessToken(accessToken, s.secret)
	if err != nil {
		return 0, ErrInvalidAccessToken
	}
	return uid, nil
}
