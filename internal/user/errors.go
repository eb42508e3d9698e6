package user

import (
	"net/http"

	"github.com/suPer8Hu/corecord/internal/common"
)

var (
	ErrInvalidNickName = common.NewError(http.StatusBadRequest, 40011, "nickname must be 1-10 letters, digits or spaces")
	ErrInvalidStatus   = common.NewError(http.StatusBadRequest, 40012, "invalid user status")
)
