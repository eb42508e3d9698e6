package folder

import (
	"net/http"

	"github.com/suPer8Hu/corecord/internal/common"
)

var (
	ErrEmptyFolderTitle      = common.NewError(http.StatusBadRequest, 40031, "folder title is required")
	ErrOverflowFolderTitle   = common.NewError(http.StatusBadRequest, 40032, "folder title must be at most 15 characters")
	ErrDuplicatedFolderTitle = common.NewError(http.StatusBadRequest, 40033, "folder title already exists")
	ErrFolderUnauthorized    = common.NewError(http.StatusUnauthorized, 40131, "folder does not belong to user")
	ErrFolderNotFound        = common.NewError(http.StatusNotFound, 40431, "folder not found")
)
