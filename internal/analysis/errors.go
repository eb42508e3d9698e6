package analysis

import (
	"net/http"

	"github.com/suPer8Hu/corecord/internal/common"
)

var (
	ErrInvalidKeyword          = common.NewError(http.StatusBadRequest, 40051, "invalid keyword")
	ErrAnalysisUnauthorized    = common.NewError(http.StatusUnauthorized, 40151, "analysis does not belong to user")
	ErrAnalysisNotFound        = common.NewError(http.StatusNotFound, 40451, "analysis not found")
	ErrJobNotFound             = common.NewError(http.StatusNotFound, 40452, "analysis job not found")
	ErrRecordNotFound          = common.NewError(http.StatusNotFound, 40453, "record not found")
	ErrAnalysisFailed          = common.NewError(http.StatusInternalServerError, 50051, "failed to analyze record")
	ErrRegenerationUnavailable = common.NewError(http.StatusServiceUnavailable, 50351, "analysis regeneration is unavailable")
)
