package record

import (
	"net/http"

	"github.com/suPer8Hu/corecord/internal/common"
)

var (
	ErrOverflowRecordTitle = common.NewError(http.StatusBadRequest, 40041, "record title must be at most 50 characters")
	ErrNotEnoughContent    = common.NewError(http.StatusBadRequest, 40042, "record content must be at least 50 characters")
	ErrOverflowContent     = common.NewError(http.StatusBadRequest, 40043, "record content must be at most 500 characters")
	ErrEmptyRecordTitle    = common.NewError(http.StatusBadRequest, 40044, "record title is required")
	ErrInvalidRecordType   = common.NewError(http.StatusBadRequest, 40045, "record type must be MEMO or CHAT")
	ErrChatRoomRequired    = common.NewError(http.StatusBadRequest, 40046, "chat records need a chat room")
	ErrRecordUnauthorized  = common.NewError(http.StatusUnauthorized, 40141, "record does not belong to user")
	ErrRecordNotFound      = common.NewError(http.StatusNotFound, 40441, "record not found")
	ErrAlreadyTmpMemo      = common.NewError(http.StatusConflict, 40941, "a temporary memo is already saved")
)
