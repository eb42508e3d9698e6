package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suPer8Hu/corecord/internal/ai"
	"github.com/suPer8Hu/corecord/internal/analysis"
	"github.com/suPer8Hu/corecord/internal/auth"
	"github.com/suPer8Hu/corecord/internal/common"
	"github.com/suPer8Hu/corecord/internal/config"
	"github.com/suPer8Hu/corecord/internal/httpapi/handlers"
	"github.com/suPer8Hu/corecord/internal/httpapi/middleware"
	"github.com/suPer8Hu/corecord/internal/metrics"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func NewRouter(db *gorm.DB, cfg config.Config, tokens auth.TokenStore, reg *ai.Registry, pub analysis.Publisher) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(metrics.GinMiddleware())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(db, cfg, tokens, reg, pub)

	r.GET("/ping", h.Ping)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rl := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst, 2*time.Minute)
	api := r.Group("/api")
	api.Use(rl.Middleware())

	// token
	api.GET("/token", h.IssueTokens)
	api.GET("/token/reissue", h.ReissueToken)
	api.POST("/users/register", h.Register)
	api.POST("/users/logout", h.Logout)
	if cfg.Env == "dev" {
		api.POST("/oauth/dev-login", h.DevLogin)
	}

	authGroup := api.Group("")
	authGroup.Use(middleware.AuthRequired(h.AuthSvc))

	// users
	authGroup.GET("/users", h.GetUser)
	authGroup.PATCH("/users", h.UpdateUser)
	authGroup.DELETE("/users", h.DeleteUser)

	// folders
	authGroup.GET("/folders", h.ListFolders)
	authGroup.POST("/folders", h.CreateFolder)
	authGroup.PATCH("/folders/:folder_id", h.UpdateFolder)
	authGroup.DELETE("/folders/:folder_id", h.DeleteFolder)

	// records
	authGroup.POST("/records/memo", h.CreateMemoRecord)
	authGroup.GET("/records/memo/:record_id", h.GetMemoRecordDetail)
	authGroup.POST("/records/memo/tmp", h.CreateTmpMemoRecord)
	authGroup.GET("/records/memo/tmp", h.GetTmpMemoRecord)
	authGroup.GET("/records/folder", h.GetRecordList)
	authGroup.PATCH("/records/folder", h.UpdateRecordFolder)
	authGroup.GET("/records/keyword", h.GetKeywordRecordList)
	authGroup.GET("/records/recent", h.GetRecentRecordList)

	// analysis
	authGroup.GET("/analysis/keywords", h.ListKeywords)
	authGroup.POST("/analysis/jobs", h.RequestRegeneration)
	authGroup.GET("/analysis/jobs/:job_id", h.GetAnalysisJob)
	authGroup.GET("/analysis/:analysis_id", h.GetAnalysis)
	authGroup.DELETE("/analysis/:analysis_id", h.DeleteAnalysis)

	// chat
	authGroup.POST("/chat", h.CreateChatRoom)
	authGroup.POST("/chat/tmp", h.CreateTmpChat)
	authGroup.GET("/chat/tmp", h.GetTmpChat)
	authGroup.POST("/chat/:chat_room_id", h.SendChat)
	authGroup.GET("/chat/:chat_room_id", h.ListChats)
	authGroup.DELETE("/chat/:chat_room_id", h.DeleteChatRoom)
	authGroup.GET("/chat/:chat_room_id/summary", h.SummarizeChat)

	return r
}
