package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/corecord/internal/auth"
	"github.com/suPer8Hu/corecord/internal/common"
)

func (h *Handler) respondTokens(c *gin.Context, tokens *auth.Tokens) {
	auth.SetRefreshCookie(c, h.Cookie, tokens.RefreshToken)
	common.OK(c, gin.H{"access_token": tokens.AccessToken})
}

// IssueTokens exchanges the tmpToken header for an access token and refresh cookie.
func (h *Handler) IssueTokens(c *gin.Context) {
	tokens, err := h.AuthSvc.IssueTokens(c.Request.Context(), c.GetHeader("tmpToken"))
	if err != nil {
		common.FailErr(c, err)
		return
	}
	h.respondTokens(c, tokens)
}

func (h *Handler) ReissueToken(c *gin.Context) {
	tokens, err := h.AuthSvc.Reissue(c.Request.Context(), auth.RefreshCookie(c))
	if err != nil {
		common.FailErr(c, err)
		return
	}
	h.respondTokens(c, tokens)
}

type devLoginReq struct {
	ProviderID string `json:"provider_id" binding:"required"`
}

// DevLogin stands in for the OAuth callback outside production.
func (h *Handler) DevLogin(c *gin.Context) {
	var req devLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	sess, err := h.AuthSvc.BeginSession(c.Request.Context(), req.ProviderID)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, sess)
}
