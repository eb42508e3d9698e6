package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/suPer8Hu/corecord/internal/common"
	"github.com/suPer8Hu/corecord/internal/models"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *Repo) FindRoom(ctx context.Context, id uint64) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatRoomNotFound
		}
		return nil, fmt.Errorf("find chat room %d: %w", id, err)
	}
	return &room, nil
}

// FindOwnedRoom loads a chat room and checks it belongs to userID.
func (r *Repo) FindOwnedRoom(ctx context.Context, userID, roomID uint64) (*models.ChatRoom, error) {
	room, err := r.FindRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := common.AssertOwner(room, userID, ErrChatRoomUnauthorized); err != nil {
		return nil, err
	}
	return room, nil
}

func (r *Repo) InsertChat(ctx context.Context, c *models.Chat) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// ListChats returns a room's chats oldest first.
func (r *Repo) ListChats(ctx context.Context, roomID uint64) ([]models.Chat, error) {
	var chats []models.Chat
	if err := r.db.WithContext(ctx).
		Where("chat_room_id = ?", roomID).
		Order("id ASC").
		Find(&chats).Error; err != nil {
		return nil, err
	}
	return chats, nil
}

// ListRecentChatsDesc returns the most recent chats in DESC id order (newest -> oldest).
func (r *Repo) ListRecentChatsDesc(ctx context.Context, roomID uint64, limit int) ([]models.Chat, error) {
	if limit <= 0 {
		limit = 20
	}
	var chats []models.Chat
	if err := r.db.WithContext(ctx).
		Where("chat_room_id = ?", roomID).
		Order("id DESC").
		Limit(limit).
		Find(&chats).Error; err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *Repo) DeleteRoom(ctx context.Context, roomID uint64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("chat_room_id = ?", roomID).Delete(&models.Chat{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.ChatRoom{}, roomID).Error
}
