package auth

import (
	"net/http"

	"github.com/suPer8Hu/corecord/internal/common"
)

var (
	ErrInvalidRefreshToken  = common.NewError(http.StatusUnauthorized, 40121, "invalid refresh token")
	ErrInvalidRegisterToken = common.NewError(http.StatusUnauthorized, 40122, "invalid register token")
	ErrInvalidTmpToken      = common.NewError(http.StatusUnauthorized, 40123, "invalid tmp token")
	ErrInvalidAccessToken   = common.NewError(http.StatusUnauthorized, 40124, "invalid access token")
	ErrAlreadyRegistered    = common.NewError(http.StatusConflict, 40921, "user is already registered")
)
