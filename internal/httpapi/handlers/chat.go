package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/corecord/internal/common"
)

func (h *Handler) CreateChatRoom(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	room, err := h.ChatSvc.CreateChatRoom(c.Request.Context(), uid)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.Created(c, room)
}

type sendChatReq struct {
	Content string `json:"content"`
}

func (h *Handler) SendChat(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "chat_room_id")
	if !ok {
		return
	}
	var req sendChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	reply, err := h.ChatSvc.SendChat(c.Request.Context(), uid, roomID, req.Content)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, reply)
}

func (h *Handler) ListChats(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "chat_room_id")
	if !ok {
		return
	}
	chats, err := h.ChatSvc.ListChats(c.Request.Context(), uid, roomID)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, gin.H{"chats": chats})
}

func (h *Handler) DeleteChatRoom(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "chat_room_id")
	if !ok {
		return
	}
	if err := h.ChatSvc.DeleteChatRoom(c.Request.Context(), uid, roomID); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, nil)
}

func (h *Handler) SummarizeChat(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "chat_room_id")
	if !ok {
		return
	}
	sum, err := h.ChatSvc.SummarizeChat(c.Request.Context(), uid, roomID)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, sum)
}

type tmpChatReq struct {
	ChatRoomID uint64 `json:"chat_room_id" binding:"required"`
}

func (h *Handler) CreateTmpChat(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req tmpChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if err := h.ChatSvc.CreateTmpChat(c.Request.Context(), uid, req.ChatRoomID); err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, nil)
}

func (h *Handler) GetTmpChat(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	tmp, err := h.ChatSvc.GetTmpChat(c.Request.Context(), uid)
	if err != nil {
		common.FailErr(c, err)
		return
	}
	common.OK(c, tmp)
}
