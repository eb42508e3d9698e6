package chat

import (
	"net/http"

	"github.com/suPer8Hu/corecord/internal/common"
)

var (
	ErrEmptyChat            = common.NewError(http.StatusBadRequest, 40061, "chat content is required")
	ErrNotEnoughChat        = common.NewError(http.StatusBadRequest, 40062, "chat room has nothing to summarize")
	ErrChatRoomUnauthorized = common.NewError(http.StatusUnauthorized, 40161, "chat room does not belong to user")
	ErrChatRoomNotFound     = common.NewError(http.StatusNotFound, 40461, "chat room not found")
	ErrAlreadyTmpChat       = common.NewError(http.StatusConflict, 40961, "a temporary chat is already saved")
	ErrSummaryFailed        = common.NewError(http.StatusBadGateway, 50261, "failed to summarize chat")
)
