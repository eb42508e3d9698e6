package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/corecord/internal/auth"
	"github.com/suPer8Hu/corecord/internal/common"
	"github.com/suPer8Hu/corecord/internal/models"
)

type registerReq struct {
	NickName string            `json:"nickname"`
	Status   models.UserStatus `json:"status"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	tokens, err := h.AuthSvc.Register(c.Request.Context(), c.GetHeader("registerToken"), req.NickName, req.Status)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	h.respondTokens(c, tokens)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.AuthSvc.Logout(c.Request.Context(), auth.RefreshCookie(c)); err != nil {
		common.FailErr(c, err)
		return
	}
	auth.ClearRefreshCookie(c, h.Cookie)
	common.OK(c, nil)
}

func (h *Handler) GetUser(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	info, err := h.UserSvc.GetUserInfo(c.Request.Context(), uid)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, info)
}

type updateUserReq struct {
	NickName *string            `json:"nickname"`
	Status   *models.UserStatus `json:"status"`
}

func (h *Handler) UpdateUser(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req updateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	info, err := h.UserSvc.UpdateUserInfo(c.Request.Context(), uid, req.NickName, req.Status)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, info)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.UserSvc.DeleteUser(c.Request.Context(), uid); err != nil {
		common.FailErr(c, err)
		return
	}
	auth.ClearRefreshCookie(c, h.Cookie)
	common.OK(c, nil)
}
