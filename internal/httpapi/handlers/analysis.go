package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/corecord/internal/common"
)

func (h *Handler) GetAnalysis(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	analysisID, ok := pathID(c, "analysis_id")
	if !ok {
		return
	}
	detail, err := h.AnalysisSvc.GetAnalysis(c.Request.Context(), uid, analysisID)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, detail)
}

func (h *Handler) DeleteAnalysis(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	analysisID, ok := pathID(c, "analysis_id")
	if !ok {
		return
	}
	if err := h.AnalysisSvc.DeleteAnalysis(c.Request.Context(), uid, analysisID); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, nil)
}

func (h *Handler) ListKeywords(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := h.AnalysisSvc.ListKeywords(c.Request.Context(), uid)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"keywords": stats})
}

type regenerateReq struct {
	RecordID uint64 `json:"record_id" binding:"required"`
}

// RequestRegeneration queues a new analysis of a record for the worker.
func (h *Handler) RequestRegeneration(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req regenerateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	job, err := h.AnalysisSvc.RequestRegeneration(c.Request.Context(), uid, req.RecordID)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.Created(c, gin.H{"job_id": job.ID, "status": job.Status})
}

func (h *Handler) GetAnalysisJob(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	job, err := h.AnalysisSvc.GetJob(c.Request.Context(), uid, c.Param("job_id"))
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, job)
}
