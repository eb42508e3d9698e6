package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/corecord/internal/common"
	"github.com/suPer8Hu/corecord/internal/models"
	"github.com/suPer8Hu/corecord/internal/record"
)

type createRecordReq struct {
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	FolderID   uint64            `json:"folder_id"`
	RecordType models.RecordType `json:"record_type"`
	ChatRoomID *uint64           `json:"chat_room_id"`
}

func (h *Handler) CreateMemoRecord(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req createRecordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.RecordType == "" {
		req.RecordType = models.RecordTypeMemo
	}
	detail, err := h.RecordSvc.CreateMemoRecord(c.Request.Context(), uid, record.CreateInput{
		Title:      req.Title,
		Content:    req.Content,
		FolderID:   req.FolderID,
		Type:       req.RecordType,
		ChatRoomID: req.ChatRoomID,
	})
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.Created(c, detail)
}

func (h *Handler) GetMemoRecordDetail(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	recordID, ok := pathID(c, "record_id")
	if !ok {
		return
	}
	detail, err := h.RecordSvc.GetMemoRecordDetail(c.Request.Context(), uid, recordID)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, detail)
}

type tmpMemoReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *Handler) CreateTmpMemoRecord(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req tmpMemoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if err := h.RecordSvc.CreateTmpMemoRecord(c.Request.Context(), uid, req.Title, req.Content); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, nil)
}

func (h *Handler) GetTmpMemoRecord(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	tmp, err := h.RecordSvc.GetTmpMemoRecord(c.Request.Context(), uid)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, tmp)
}

func (h *Handler) GetRecordList(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	last, ok := cursor(c)
	if !ok {
		return
	}
	list, err := h.RecordSvc.GetRecordList(c.Request.Context(), uid, c.DefaultQuery("folder", record.AllFolders), last)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, list)
}

func (h *Handler) GetKeywordRecordList(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	last, ok := cursor(c)
	if !ok {
		return
	}
	list, err := h.RecordSvc.GetKeywordRecordList(c.Request.Context(), uid, c.Query("keyword"), last)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, list)
}

type updateRecordFolderReq struct {
	RecordID uint64 `json:"record_id" binding:"required"`
	Folder   string `json:"folder"`
}

func (h *Handler) UpdateRecordFolder(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req updateRecordFolderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if err := h.RecordSvc.UpdateRecordFolder(c.Request.Context(), uid, req.RecordID, req.Folder); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, nil)
}

func (h *Handler) GetRecentRecordList(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.RecordSvc.GetRecentRecordList(c.Request.Context(), uid)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"records": items})
}
