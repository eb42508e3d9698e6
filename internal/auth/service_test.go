package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/corecord/internal/common"
	"github.com/suPer8Hu/corecord/internal/config"
	"github.com/suPer8Hu/corecord/internal/dbtest"
	"github.com/suPer8Hu/corecord/internal/models"
	"github.com/suPer8Hu/corecord/internal/store/redisstore"
	"github.com/suPer8Hu/corecord/internal/user"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func newTestService(t *testing.T) (*Service, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()
	db := dbtest.Open(t)
	mr := miniredis.RunT(t)
	store := redisstore.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = store.Close() })
	cfg := config.Config{
		JWTSecret:        testSecret,
		AccessTokenTTL:   time.Hour,
		RegisterTokenTTL: 10 * time.Minute,
		TmpTokenTTL:      10 * time.Minute,
	}
	return NewService(db, store, cfg), db, mr
}

func TestAccessToken_RoundTrip(t *testing.T) {
	tok, err := SignAccessToken(42, testSecret, time.Minute)
	require.NoError(t, err)

	uid, err := ParseAccessToken(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)

	_, err = ParseAccessToken(tok, "other-secret")
	assert.Error(t, err)

	expired, err := SignAccessToken(42, testSecret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseAccessToken(expired, testSecret)
	assert.Error(t, err)
}

func TestAccessToken_RejectsOtherKinds(t *testing.T) {
	refresh, err := signRefreshToken(42, testSecret, time.Minute)
	require.NoError(t, err)
	_, err = ParseAccessToken(refresh, testSecret)
	assert.Error(t, err)

	register, err := signRegisterToken("kakao-1", testSecret, time.Minute)
	require.NoError(t, err)
	_, err = ParseAccessToken(register, testSecret)
	assert.Error(t, err)
}

func TestBeginSession_NewUserThenRegister(t *testing.T) {
	svc, db, mr := newTestService(t)
	ctx := context.Background()

	sess, err := svc.BeginSession(ctx, "kakao-1")
	require.NoError(t, err)
	require.NotEmpty(t, sess.RegisterToken)
	assert.Empty(t, sess.TmpToken)

	tokens, err := svc.Register(ctx, sess.RegisterToken, "코어", models.StatusJobSeeker)
	require.NoError(t, err)
	uid, err := svc.Authenticate(tokens.AccessToken)
	require.NoError(t, err)

	var u models.User
	require.NoError(t, db.First(&u, uid).Error)
	assert.Equal(t, "kakao-1", u.ProviderID)
	assert.True(t, mr.Exists("refreshToken:"+tokens.RefreshToken))
	assert.Equal(t, RefreshTokenTTL, mr.TTL("refreshToken:"+tokens.RefreshToken))

	_, err = svc.Register(ctx, sess.RegisterToken, "코어", models.StatusJobSeeker)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	reg, err := signRegisterToken("kakao-2", testSecret, time.Minute)
	require.NoError(t, err)

	_, err = svc.Register(ctx, reg, "bad!name", models.StatusWorker)
	assert.ErrorIs(t, err, user.ErrInvalidNickName)

	_, err = svc.Register(ctx, reg, "ok", "ASTRONAUT")
	assert.ErrorIs(t, err, user.ErrInvalidStatus)

	_, err = svc.Register(ctx, "garbage", "ok", models.StatusWorker)
	assert.ErrorIs(t, err, ErrInvalidRegisterToken)

	access, err := SignAccessToken(1, testSecret, time.Minute)
	require.NoError(t, err)
	_, err = svc.Register(ctx, access, "ok", models.StatusWorker)
	assert.ErrorIs(t, err, ErrInvalidRegisterToken)
}

func TestIssueTokens_TmpTokenIsSingleUse(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	u := dbtest.SeedUser(t, db, "kakao-3")

	sess, err := svc.BeginSession(ctx, "kakao-3")
	require.NoError(t, err)
	require.NotEmpty(t, sess.TmpToken)

	tokens, err := svc.IssueTokens(ctx, sess.TmpToken)
	require.NoError(t, err)
	uid, err := svc.Authenticate(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)

	_, err = svc.IssueTokens(ctx, sess.TmpToken)
	assert.ErrorIs(t, err, ErrInvalidTmpToken)
	_, err = svc.IssueTokens(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidTmpToken)
}

func TestReissue_RotatesRefreshToken(t *testing.T) {
	svc, db, mr := newTestService(t)
	ctx := context.Background()
	u := dbtest.SeedUser(t, db, "kakao-4")

	first, err := svc.issue(ctx, u.ID)
	require.NoError(t, err)

	second, err := svc.Reissue(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.False(t, mr.Exists("refreshToken:"+first.RefreshToken))

	_, err = svc.Reissue(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = svc.Reissue(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestReissue_Rejects(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	u := dbtest.SeedUser(t, db, "kakao-5")

	_, err := svc.Reissue(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// well-formed but never stored
	orphan, err := signRefreshToken(u.ID, testSecret, time.Hour)
	require.NoError(t, err)
	_, err = svc.Reissue(ctx, orphan)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// access tokens are not refresh tokens
	access, err := SignAccessToken(u.ID, testSecret, time.Hour)
	require.NoError(t, err)
	_, err = svc.Reissue(ctx, access)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestLogoutAndRevoke(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	u := dbtest.SeedUser(t, db, "kakao-6")

	tokens, err := svc.issue(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, tokens.RefreshToken))
	_, err = svc.Reissue(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	tokens, err = svc.issue(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, svc.RevokeUser(ctx, u.ID))
	_, err = svc.Reissue(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestReissue_DeletedUser(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	u := dbtest.SeedUser(t, db, "kakao-7")

	tokens, err := svc.issue(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, db.Delete(&models.User{}, u.ID).Error)

	_, err = svc.Reissue(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}
