package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/corecord/internal/common"
)

type folderReq struct {
	Title string `json:"title"`
}

func (h *Handler) ListFolders(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	folders, err := h.FolderSvc.ListFolders(c.Request.Context(), uid)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"folders": folders})
}

func (h *Handler) CreateFolder(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req folderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	folders, err := h.FolderSvc.CreateFolder(c.Request.Context(), uid, req.Title)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.Created(c, gin.H{"folders": folders})
}

func (h *Handler) UpdateFolder(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	folderID, ok := pathID(c, "folder_id")
	if !ok {
		return
	}
	var req folderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	folders, err := h.FolderSvc.UpdateFolder(c.Request.Context(), uid, folderID, req.Title)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"folders": folders})
}

func (h *Handler) DeleteFolder(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	folderID, ok := pathID(c, "folder_id")
	if !ok {
		return
	}
	folders, err := h.FolderSvc.DeleteFolder(c.Request.Context(), uid, folderID)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"folders": folders})
}
