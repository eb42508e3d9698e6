package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/corecord/internal/ai"
	"github.com/suPer8Hu/corecord/internal/analysis"
	"github.com/suPer8Hu/corecord/internal/auth"
	"github.com/suPer8Hu/corecord/internal/chat"
	"github.com/suPer8Hu/corecord/internal/common"
	"github.com/suPer8Hu/corecord/internal/config"
	"github.com/suPer8Hu/corecord/internal/folder"
	"github.com/suPer8Hu/corecord/internal/httpapi/middleware"
	"github.com/suPer8Hu/corecord/internal/record"
	"github.com/suPer8Hu/corecord/internal/user"
	"gorm.io/gorm"
)

type Handler struct {
	Cfg    config.Config
	Cookie auth.CookieConfig

	AuthSvc     *auth.Service
	UserSvc     *user.Service
	FolderSvc   *folder.Service
	RecordSvc   *record.Service
	AnalysisSvc *analysis.Service
	ChatSvc     *chat.Service
}

// NewHandler wires every domain service. pub may be nil, which disables
// analysis regeneration requests.
func NewHandler(db *gorm.DB, cfg config.Config, tokens auth.TokenStore, reg *ai.Registry, pub analysis.Publisher) *Handler {
	authSvc := auth.NewService(db, tokens, cfg)
	analysisSvc := analysis.NewService(db, analysis.NewAIGenerator(reg), pub)
	return &Handler{
		Cfg:         cfg,
		Cookie:      auth.CookieConfig{Domain: cfg.CookieDomain, Secure: cfg.CookieSecure},
		AuthSvc:     authSvc,
		UserSvc:     user.NewService(db, authSvc),
		FolderSvc:   folder.NewService(db),
		RecordSvc:   record.NewService(db, analysisSvc),
		AnalysisSvc: analysisSvc,
		ChatSvc:     chat.NewService(db, reg, cfg.ChatContextWindowSize),
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func badRequest(c *gin.Context, msg string) {
	common.Fail(c, http.StatusBadRequest, common.ErrBadRequest.Code, msg)
}

// currentUser reads the id set by middleware.AuthRequired.
func currentUser(c *gin.Context) (uint64, bool) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.FailErr(c, common.ErrUnauthorized)
		return 0, false
	}
	return uid, true
}

func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// cursor parses an optional lastRecordId query; absent means the first page.
func cursor(c *gin.Context) (uint64, bool) {
	v := c.Query("lastRecordId")
	if v == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		badRequest(c, "invalid lastRecordId")
		return 0, false
	}
	return id, true
}
