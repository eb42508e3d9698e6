package record

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/suPer8Hu/corecord/internal/analysis"
	"github.com/suPer8Hu/corecord/internal/chat"
	"github.com/suPer8Hu/corecord/internal/common"
	"github.com/suPer8Hu/corecord/internal/folder"
	"github.com/suPer8Hu/corecord/internal/metrics"
	"github.com/suPer8Hu/corecord/internal/models"
	"github.com/suPer8Hu/corecord/internal/user"
	"gorm.io/gorm"
)

const (
	maxTitleLength   = 50
	minContentLength = 50
	maxContentLength = 500

	pageSize   = 30
	recentSize = 3

	// AllFolders lists records regardless of folder.
	AllFolders = "all"
)

type Service struct {
	db       *gorm.DB
	analyses *analysis.Service
}

func NewService(db *gorm.DB, analyses *analysis.Service) *Service {
	return &Service{db: db, analyses: analyses}
}

type CreateInput struct {
	Title      string
	Content    string
	FolderID   uint64
	Type       models.RecordType
	ChatRoomID *uint64
}

type Detail struct {
	RecordID   uint64            `json:"record_id"`
	AnalysisID *uint64           `json:"analysis_id"`
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	Folder     string            `json:"folder"`
	ChatRoomID *uint64           `json:"chat_room_id"`
	Type       models.RecordType `json:"record_type"`
	CreatedAt  time.Time         `json:"created_at"`
}

type TmpMemo struct {
	Exists  bool    `json:"exists"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type Item struct {
	RecordID   uint64    `json:"record_id"`
	AnalysisID *uint64   `json:"analysis_id"`
	Title      string    `json:"title"`
	Folder     string    `json:"folder"`
	CreatedAt  time.Time `json:"created_at"`
}

type List struct {
	Folder  string `json:"folder"`
	Records []Item `json:"records"`
	HasNext bool   `json:"has_next"`
}

type KeywordItem struct {
	RecordID   uint64    `json:"record_id"`
	AnalysisID *uint64   `json:"analysis_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type KeywordList struct {
	Records []KeywordItem `json:"records"`
	HasNext bool          `json:"has_next"`
}

func analysisID(rec *models.Record) *uint64 {
	if rec.Analysis == nil {
		return nil
	}
	id := rec.Analysis.ID
	return &id
}

func toDetail(rec *models.Record) *Detail {
	return &Detail{
		RecordID:   rec.ID,
		AnalysisID: analysisID(rec),
		Title:      rec.Title,
		Content:    rec.Content,
		Folder:     rec.FolderTitle(),
		ChatRoomID: rec.ChatRoomID,
		Type:       rec.Type,
		CreatedAt:  rec.CreatedAt,
	}
}

func toItem(rec *models.Record) Item {
	return Item{
		RecordID:   rec.ID,
		AnalysisID: analysisID(rec),
		Title:      rec.Title,
		Folder:     rec.FolderTitle(),
		CreatedAt:  rec.CreatedAt,
	}
}

// validateText checks title and content lengths in characters; content
// between 50 and 500 characters inclusive is accepted.
func validateText(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyRecordTitle
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return ErrOverflowRecordTitle
	}
	n := utf8.RuneCountInString(content)
	if n < minContentLength {
		return ErrNotEnoughContent
	}
	if n > maxContentLength {
		return ErrOverflowContent
	}
	return nil
}

func validateInput(in CreateInput) error {
	if err := validateText(in.Title, in.Content); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return ErrInvalidRecordType
	}
	if in.Type == models.RecordTypeChat && in.ChatRoomID == nil {
		return ErrChatRoomRequired
	}
	return nil
}

// CreateMemoRecord files a new record and generates its analysis. The record
// and the analysis are committed together or not at all.
func (s *Service) CreateMemoRecord(ctx context.Context, userID uint64, in CreateInput) (*Detail, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var out *Detail
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := user.NewRepo(tx).FindByID(ctx, userID); err != nil {
			return err
		}
		f, err := folder.NewRepo(tx).FindByID(ctx, in.FolderID)
		if err != nil {
			return err
		}
		if err := common.AssertOwner(f, userID, folder.ErrFolderUnauthorized); err != nil {
			return err
		}

		rec := &models.Record{
			UserID:   userID,
			FolderID: &f.ID,
			Type:     in.Type,
			Title:    in.Title,
			Content:  in.Content,
		}
		if in.Type == models.RecordTypeChat {
			room, err := chat.NewRepo(tx).FindOwnedRoom(ctx, userID, *in.ChatRoomID)
			if err != nil {
				return err
			}
			rec.ChatRoomID = &room.ID
		}
		if err := NewRepo(tx).Create(ctx, rec); err != nil {
			return err
		}

		a, err := s.analyses.CreateAnalysis(ctx, tx, rec)
		if err != nil {
			return err
		}
		rec.Folder = f
		rec.Analysis = a
		out = toDetail(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordsCreatedTotal.WithLabelValues(string(in.Type)).Inc()
	return out, nil
}

func (s *Service) GetMemoRecordDetail(ctx context.Context, userID, recordID uint64) (*Detail, error) {
	if _, err := user.NewRepo(s.db).FindByID(ctx, userID); err != nil {
		return nil, err
	}
	rec, err := NewRepo(s.db).FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := common.AssertOwner(rec, userID, ErrRecordUnauthorized); err != nil {
		return nil, err
	}
	return toDetail(rec), nil
}

// CreateTmpMemoRecord saves an unfiled draft and points the user's draft slot at it.
func (s *Service) CreateTmpMemoRecord(ctx context.Context, userID uint64, title, content string) error {
	if err := validateText(title, content); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := user.NewRepo(tx)
		u, err := users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if u.TmpMemo != nil {
			return ErrAlreadyTmpMemo
		}
		rec := &models.Record{
			UserID:    userID,
			Type:      models.RecordTypeMemo,
			Title:     title,
			Content:   content,
			Temporary: true,
		}
		if err := NewRepo(tx).Create(ctx, rec); err != nil {
			return err
		}
		ok, err := users.SetTmpMemo(ctx, userID, rec.ID)
		if err != nil {
			return err
		}
		if !ok {
			// another draft won the slot; rolls back our insert
			return ErrAlreadyTmpMemo
		}
		return nil
	})
}

// GetTmpMemoRecord returns the pending draft and discards it.
func (s *Service) GetTmpMemoRecord(ctx context.Context, userID uint64) (*TmpMemo, error) {
	out := &TmpMemo{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := user.NewRepo(tx)
		u, err := users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if u.TmpMemo == nil {
			return nil
		}
		draftID := *u.TmpMemo

		ok, err := users.ClearTmpMemo(ctx, userID, draftID)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		repo := NewRepo(tx)
		draft, err := repo.FindTmpByID(ctx, draftID)
		if errors.Is(err, ErrRecordNotFound) {
			// dangling pointer, now cleared
			return nil
		}
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, draft.ID); err != nil {
			return err
		}
		out.Exists = true
		out.Title = &draft.Title
		out.Content = &draft.Content
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func trimPage[T any](items []T) ([]T, bool) {
	if len(items) > pageSize {
		return items[:pageSize], true
	}
	return items, false
}

// GetRecordList pages through one folder, or every folder for AllFolders.
func (s *Service) GetRecordList(ctx context.Context, userID uint64, folderName string, lastRecordID uint64) (*List, error) {
	if folderName == "" {
		folderName = AllFolders
	}
	if _, err := user.NewRepo(s.db).FindByID(ctx, userID); err != nil {
		return nil, err
	}

	var folderID *uint64
	if folderName != AllFolders {
		f, err := folder.NewRepo(s.db).FindByTitle(ctx, userID, folderName)
		if err != nil {
			return nil, err
		}
		folderID = &f.ID
	}

	recs, err := NewRepo(s.db).List(ctx, userID, folderID, lastRecordID, pageSize+1)
	if err != nil {
		return nil, err
	}
	recs, hasNext := trimPage(recs)

	out := &List{Folder: folderName, Records: make([]Item, 0, len(recs)), HasNext: hasNext}
	for i := range recs {
		out.Records = append(out.Records, toItem(&recs[i]))
	}
	return out, nil
}

// GetKeywordRecordList pages through records whose analysis has the keyword.
func (s *Service) GetKeywordRecordList(ctx context.Context, userID uint64, keyword string, lastRecordID uint64) (*KeywordList, error) {
	k, ok := models.ParseKeyword(keyword)
	if !ok {
		return nil, analysis.ErrInvalidKeyword
	}
	if _, err := user.NewRepo(s.db).FindByID(ctx, userID); err != nil {
		return nil, err
	}

	hits, err := NewRepo(s.db).ListByKeyword(ctx, userID, k, lastRecordID, pageSize+1)
	if err != nil {
		return nil, err
	}
	hits, hasNext := trimPage(hits)

	out := &KeywordList{Records: make([]KeywordItem, 0, len(hits)), HasNext: hasNext}
	for i := range hits {
		rec := &hits[i].Record
		out.Records = append(out.Records, KeywordItem{
			RecordID:   rec.ID,
			AnalysisID: analysisID(rec),
			Title:      rec.Title,
			Content:    hits[i].AbilityContent,
			CreatedAt:  rec.CreatedAt,
		})
	}
	return out, nil
}

// UpdateRecordFolder moves an owned record into the user's folder named folderName.
func (s *Service) UpdateRecordFolder(ctx context.Context, userID, recordID uint64, folderName string) error {
	if strings.TrimSpace(folderName) == "" {
		return folder.ErrEmptyFolderTitle
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := user.NewRepo(tx).FindByID(ctx, userID); err != nil {
			return err
		}
		repo := NewRepo(tx)
		rec, err := repo.FindByID(ctx, recordID)
		if err != nil {
			return err
		}
		if err := common.AssertOwner(rec, userID, ErrRecordUnauthorized); err != nil {
			return err
		}
		f, err := folder.NewRepo(tx).FindByTitle(ctx, userID, folderName)
		if err != nil {
			return err
		}
		return repo.UpdateFolder(ctx, rec.ID, f.ID)
	})
}

func (s *Service) GetRecentRecordList(ctx context.Context, userID uint64) ([]Item, error) {
	if _, err := user.NewRepo(s.db).FindByID(ctx, userID); err != nil {
		return nil, err
	}
	recs, err := NewRepo(s.db).List(ctx, userID, nil, 0, recentSize)
	if err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(recs))
	for i := range recs {
		out = append(out, toItem(&recs[i]))
	}
	return out, nil
}
