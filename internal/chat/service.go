package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/suPer8Hu/corecord/internal/ai"
	"github.com/suPer8Hu/corecord/internal/models"
	"github.com/suPer8Hu/corecord/internal/user"
	"gorm.io/gorm"
)

const (
	greeting = "안녕하세요! 오늘 어떤 경험을 했는지 편하게 들려주세요."

	systemPrompt = "You help the user recall a recent experience in detail. " +
		"Ask one short follow-up question at a time, in Korean."

	summaryPrompt = "Summarize the user's experience from the conversation below. " +
		`Reply with JSON only: {"title": "<at most 50 characters>", "content": "<50 to 500 characters>"}. ` +
		"Write in Korean and only use facts the user stated."

	maxSummaryTitle = 50
)

type Service struct {
	db                *gorm.DB
	registry          *ai.Registry
	contextWindowSize int
}

func NewService(db *gorm.DB, registry *ai.Registry, contextWindowSize int) *Service {
	if contextWindowSize <= 0 || contextWindowSize > 100 {
		contextWindowSize = 20
	}
	return &Service{db: db, registry: registry, contextWindowSize: contextWindowSize}
}

type Room struct {
	ChatRoomID uint64 `json:"chat_room_id"`
	FirstChat  string `json:"first_chat"`
}

type Reply struct {
	ChatID  uint64 `json:"chat_id"`
	Content string `json:"content"`
}

type Item struct {
	ChatID    uint64    `json:"chat_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Summary struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type TmpChat struct {
	Exists     bool    `json:"exists"`
	ChatRoomID *uint64 `json:"chat_room_id"`
}

// CreateChatRoom opens a room seeded with the assistant's greeting.
func (s *Service) CreateChatRoom(ctx context.Context, userID uint64) (*Room, error) {
	var out *Room
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := user.NewRepo(tx).FindByID(ctx, userID); err != nil {
			return err
		}
		repo := NewRepo(tx)
		room := &models.ChatRoom{UserID: userID}
		if err := repo.CreateRoom(ctx, room); err != nil {
			return err
		}
		if err := repo.InsertChat(ctx, &models.Chat{ChatRoomID: room.ID, Role: models.RoleAssistant, Content: greeting}); err != nil {
			return err
		}
		out = &Room{ChatRoomID: room.ID, FirstChat: greeting}
		return nil
	})
	return out, err
}

func (s *Service) ownedRoom(ctx context.Context, userID, roomID uint64) (*models.ChatRoom, error) {
	if _, err := user.NewRepo(s.db).FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return NewRepo(s.db).FindOwnedRoom(ctx, userID, roomID)
}

// SendChat stores the user's message, asks the provider for a reply over the
// recent context window and stores the reply.
func (s *Service) SendChat(ctx context.Context, userID, roomID uint64, content string) (*Reply, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyChat
	}
	room, err := s.ownedRoom(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}
	provider, err := s.registry.Default(ctx)
	if err != nil {
		return nil, err
	}

	repo := NewRepo(s.db)
	// 1) store user message
	if err := repo.InsertChat(ctx, &models.Chat{ChatRoomID: room.ID, Role: models.RoleUser, Content: content}); err != nil {
		return nil, err
	}

	// 2) build provider messages from recent history
	msgs, err := s.contextMessages(ctx, repo, room.ID, systemPrompt)
	if err != nil {
		return nil, err
	}

	// 3) call provider
	reply, err := provider.Chat(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("chat provider: %w", err)
	}

	// 4) store assistant message
	assistant := &models.Chat{ChatRoomID: room.ID, Role: models.RoleAssistant, Content: reply}
	if err := repo.InsertChat(ctx, assistant); err != nil {
		return nil, err
	}
	return &Reply{ChatID: assistant.ID, Content: reply}, nil
}

// contextMessages returns the system prompt followed by the newest chats, oldest first.
func (s *Service) contextMessages(ctx context.Context, repo *Repo, roomID uint64, prompt string) ([]ai.Message, error) {
	recentDesc, err := repo.ListRecentChatsDesc(ctx, roomID, s.contextWindowSize)
	if err != nil {
		return nil, err
	}
	msgs := make([]ai.Message, 0, len(recentDesc)+1)
	msgs = append(msgs, ai.Message{Role: ai.RoleSystem, Content: prompt})
	for i := len(recentDesc) - 1; i >= 0; i-- {
		c := recentDesc[i]
		msgs = append(msgs, ai.Message{Role: c.Role, Content: c.Content})
	}
	return msgs, nil
}

func (s *Service) ListChats(ctx context.Context, userID, roomID uint64) ([]Item, error) {
	room, err := s.ownedRoom(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}
	chats, err := NewRepo(s.db).ListChats(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(chats))
	for _, c := range chats {
		out = append(out, Item{ChatID: c.ID, Role: c.Role, Content: c.Content, CreatedAt: c.CreatedAt})
	}
	return out, nil
}

// DeleteChatRoom removes the room with its chats and drops a pending tmp chat pointing at it.
func (s *Service) DeleteChatRoom(ctx context.Context, userID, roomID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := user.NewRepo(tx)
		if _, err := users.FindByID(ctx, userID); err != nil {
			return err
		}
		repo := NewRepo(tx)
		room, err := repo.FindOwnedRoom(ctx, userID, roomID)
		if err != nil {
			return err
		}
		if _, err := users.ClearTmpChat(ctx, userID, room.ID); err != nil {
			return err
		}
		if err := tx.Model(&models.Record{}).Where("chat_room_id = ?", room.ID).
			Update("chat_room_id", gorm.Expr("NULL")).Error; err != nil {
			return fmt.Errorf("detach records of chat room %d: %w", room.ID, err)
		}
		return repo.DeleteRoom(ctx, room.ID)
	})
}

// SummarizeChat turns the user's side of a conversation into a record title and content.
func (s *Service) SummarizeChat(ctx context.Context, userID, roomID uint64) (*Summary, error) {
	room, err := s.ownedRoom(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}
	chats, err := NewRepo(s.db).ListChats(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	userTurns := 0
	for _, c := range chats {
		if c.Role == models.RoleUser {
			userTurns++
		}
		fmt.Fprintf(&b, "%s: %s\n", c.Role, c.Content)
	}
	if userTurns == 0 {
		return nil, ErrNotEnoughChat
	}

	provider, err := s.registry.Default(ctx)
	if err != nil {
		return nil, err
	}
	var sum Summary
	err = ai.ChatJSON(ctx, provider, []ai.Message{
		{Role: ai.RoleSystem, Content: summaryPrompt},
		{Role: ai.RoleUser, Content: b.String()},
	}, &sum)
	if err != nil {
		log.Warn().Err(err).Uint64("chat_room_id", room.ID).Msg("chat summary failed")
		return nil, ErrSummaryFailed
	}
	sum.Title = strings.TrimSpace(sum.Title)
	sum.Content = strings.TrimSpace(sum.Content)
	if sum.Title == "" || sum.Content == "" {
		return nil, ErrSummaryFailed
	}
	if utf8.RuneCountInString(sum.Title) > maxSummaryTitle {
		sum.Title = string([]rune(sum.Title)[:maxSummaryTitle])
	}
	return &sum, nil
}

// CreateTmpChat remembers roomID as the user's pending chat draft.
func (s *Service) CreateTmpChat(ctx context.Context, userID, roomID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := user.NewRepo(tx)
		if _, err := users.FindByID(ctx, userID); err != nil {
			return err
		}
		room, err := NewRepo(tx).FindOwnedRoom(ctx, userID, roomID)
		if err != nil {
			return err
		}
		ok, err := users.SetTmpChat(ctx, userID, room.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyTmpChat
		}
		return nil
	})
}

// GetTmpChat hands out the pending chat draft once and clears it.
func (s *Service) GetTmpChat(ctx context.Context, userID uint64) (*TmpChat, error) {
	out := &TmpChat{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := user.NewRepo(tx)
		u, err := users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if u.TmpChat == nil {
			return nil
		}
		roomID := *u.TmpChat
		ok, err := users.ClearTmpChat(ctx, userID, roomID)
		if err != nil {
			return err
		}
		if !ok {
			// consumed concurrently
			return nil
		}
		out.Exists = true
		out.ChatRoomID = &roomID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

