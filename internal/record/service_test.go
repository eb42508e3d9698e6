package record

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/suPer8Hu/corecord/internal/analysis"
	"github.com/suPer8Hu/corecord/internal/chat"
	"github.com/suPer8Hu/corecord/internal/common"
	"github.com/suPer8Hu/corecord/internal/dbtest"
	"github.com/suPer8Hu/corecord/internal/folder"
	"github.com/suPer8Hu/corecord/internal/models"
	"gorm.io/gorm"
)

type stubGenerator struct {
	keyword models.Keyword
	err     error
}

func (g *stubGenerator) Generate(ctx context.Context, content string) (*analysis.Result, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &analysis.Result{
		Content:   "요약",
		Comment:   "코멘트",
		Abilities: []analysis.AbilityResult{{Keyword: g.keyword, Content: string(g.keyword) + " 역량"}},
	}, nil
}

type fixture struct {
	db     *gorm.DB
	svc    *Service
	gen    *stubGenerator
	user   *models.User
	folder *models.Folder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	gen := &stubGenerator{keyword: models.KeywordLeadership}
	u := dbtest.SeedUser(t, db, "p1")
	f := &models.Folder{UserID: u.ID, Title: "Work"}
	if err := db.Create(f).Error; err != nil {
		t.Fatalf("seed folder: %v", err)
	}
	return &fixture{
		db:     db,
		svc:    NewService(db, analysis.NewService(db, gen, nil)),
		gen:    gen,
		user:   u,
		folder: f,
	}
}

func (fx *fixture) memo(content string) CreateInput {
	return CreateInput{Title: "발표 준비", Content: content, FolderID: fx.folder.ID, Type: models.RecordTypeMemo}
}

func (fx *fixture) count(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	if err := fx.db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", m, err)
	}
	return n
}

func content(n int) string { return strings.Repeat("경", n) }

func TestCreateMemoRecord_ContentBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		wantErr error
	}{
		{"49 characters", 49, ErrNotEnoughContent},
		{"50 characters", 50, nil},
		{"500 characters", 500, nil},
		{"501 characters", 501, ErrOverflowContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			d, err := fx.svc.CreateMemoRecord(context.Background(), fx.user.ID, fx.memo(content(tt.length)))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}

			wantRows := int64(0)
			if tt.wantErr == nil {
				wantRows = 1
				if d.AnalysisID == nil || d.Folder != "Work" || d.Type != models.RecordTypeMemo {
					t.Fatalf("unexpected detail: %+v", d)
				}
			}
			if n := fx.count(t, &models.Record{}); n != wantRows {
				t.Fatalf("records = %d, want %d", n, wantRows)
			}
			if n := fx.count(t, &models.Analysis{}); n != wantRows {
				t.Fatalf("analyses = %d, want %d", n, wantRows)
			}
		})
	}
}

func TestCreateMemoRecord_ValidatesBeforeLoading(t *testing.T) {
	fx := newFixture(t)

	tests := []struct {
		name    string
		in      CreateInput
		wantErr error
	}{
		{"blank title", CreateInput{Title: "  ", Content: content(60), FolderID: 999, Type: models.RecordTypeMemo}, ErrEmptyRecordTitle},
		{"long title", CreateInput{Title: strings.Repeat("t", 51), Content: content(60), FolderID: 999, Type: models.RecordTypeMemo}, ErrOverflowRecordTitle},
		{"bad type", CreateInput{Title: "t", Content: content(60), FolderID: 999, Type: "VOICE"}, ErrInvalidRecordType},
		{"chat without room", CreateInput{Title: "t", Content: content(60), FolderID: 999, Type: models.RecordTypeChat}, ErrChatRoomRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// unknown user and folder: validation must win
			if _, err := fx.svc.CreateMemoRecord(context.Background(), 12345, tt.in); !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoRecord_OwnershipAndLookups(t *testing.T) {
	fx := newFixture(t)
	other := dbtest.SeedUser(t, fx.db, "p2")
	ctx := context.Background()

	if _, err := fx.svc.CreateMemoRecord(ctx, 12345, fx.memo(content(60))); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := fx.svc.CreateMemoRecord(ctx, other.ID, fx.memo(content(60))); !errors.Is(err, folder.ErrFolderUnauthorized) {
		t.Fatalf("expected ErrFolderUnauthorized, got %v", err)
	}
	in := fx.memo(content(60))
	in.FolderID = fx.folder.ID + 100
	if _, err := fx.svc.CreateMemoRecord(ctx, fx.user.ID, in); !errors.Is(err, folder.ErrFolderNotFound) {
		t.Fatalf("expected ErrFolderNotFound, got %v", err)
	}
}

func TestCreateMemoRecord_ChatRecord(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	other := dbtest.SeedUser(t, fx.db, "p2")
	room := &models.ChatRoom{UserID: fx.user.ID}
	if err := fx.db.Create(room).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}
	foreign := &models.ChatRoom{UserID: other.ID}
	if err := fx.db.Create(foreign).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}

	in := fx.memo(content(60))
	in.Type = models.RecordTypeChat
	in.ChatRoomID = &room.ID
	d, err := fx.svc.CreateMemoRecord(ctx, fx.user.ID, in)
	if err != nil {
		t.Fatalf("create chat record: %v", err)
	}
	if d.ChatRoomID == nil || *d.ChatRoomID != room.ID || d.Type != models.RecordTypeChat {
		t.Fatalf("unexpected detail: %+v", d)
	}

	in.ChatRoomID = &foreign.ID
	if _, err := fx.svc.CreateMemoRecord(ctx, fx.user.ID, in); !errors.Is(err, chat.ErrChatRoomUnauthorized) {
		t.Fatalf("expected ErrChatRoomUnauthorized, got %v", err)
	}
	missing := foreign.ID + 100
	in.ChatRoomID = &missing
	if _, err := fx.svc.CreateMemoRecord(ctx, fx.user.ID, in); !errors.Is(err, chat.ErrChatRoomNotFound) {
		t.Fatalf("expected ErrChatRoomNotFound, got %v", err)
	}
}

func TestCreateMemoRecord_AnalysisFailureLeavesNoRecord(t *testing.T) {
	fx := newFixture(t)
	fx.gen.err = errors.New("model offline")

	if _, err := fx.svc.CreateMemoRecord(context.Background(), fx.user.ID, fx.memo(content(80))); !errors.Is(err, analysis.ErrAnalysisFailed) {
		t.Fatalf("expected ErrAnalysisFailed, got %v", err)
	}
	if n := fx.count(t, &models.Record{}); n != 0 {
		t.Fatalf("expected no record rows, got %d", n)
	}
}

func TestGetMemoRecordDetail(t *testing.T) {
	fx := newFixture(t)
	other := dbtest.SeedUser(t, fx.db, "p2")
	ctx := context.Background()
	created, err := fx.svc.CreateMemoRecord(ctx, fx.user.ID, fx.memo(content(60)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	d, err := fx.svc.GetMemoRecordDetail(ctx, fx.user.ID, created.RecordID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if d.Title != created.Title || d.Folder != "Work" || d.AnalysisID == nil || *d.AnalysisID != *created.AnalysisID {
		t.Fatalf("unexpected detail: %+v", d)
	}

	if _, err := fx.svc.GetMemoRecordDetail(ctx, other.ID, created.RecordID); !errors.Is(err, ErrRecordUnauthorized) {
		t.Fatalf("expected ErrRecordUnauthorized, got %v", err)
	}
	if _, err := fx.svc.GetMemoRecordDetail(ctx, fx.user.ID, created.RecordID+1); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestTmpMemo_SingleConsume(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	body := content(70)

	if err := fx.svc.CreateTmpMemoRecord(ctx, fx.user.ID, "임시 저장", body); err != nil {
		t.Fatalf("create tmp: %v", err)
	}
	if err := fx.svc.CreateTmpMemoRecord(ctx, fx.user.ID, "두번째", body); !errors.Is(err, ErrAlreadyTmpMemo) {
		t.Fatalf("expected ErrAlreadyTmpMemo, got %v", err)
	}

	// drafts stay out of listings
	list, err := fx.svc.GetRecordList(ctx, fx.user.ID, AllFolders, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Records) != 0 {
		t.Fatalf("expected draft hidden, got %+v", list.Records)
	}

	got, err := fx.svc.GetTmpMemoRecord(ctx, fx.user.ID)
	if err != nil {
		t.Fatalf("get tmp: %v", err)
	}
	if !got.Exists || *got.Title != "임시 저장" || *got.Content != body {
		t.Fatalf("unexpected tmp memo: %+v", got)
	}

	var u models.User
	if err := fx.db.First(&u, fx.user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if u.TmpMemo != nil {
		t.Fatalf("expected pointer cleared, got %d", *u.TmpMemo)
	}
	if n := fx.count(t, &models.Record{}); n != 0 {
		t.Fatalf("expected draft row deleted, %d left", n)
	}

	again, err := fx.svc.GetTmpMemoRecord(ctx, fx.user.ID)
	if err != nil {
		t.Fatalf("get tmp again: %v", err)
	}
	if again.Exists || again.Title != nil || again.Content != nil {
		t.Fatalf("expected absent draft, got %+v", again)
	}

	// the slot is free again
	if err := fx.svc.CreateTmpMemoRecord(ctx, fx.user.ID, "세번째", body); err != nil {
		t.Fatalf("create tmp after consume: %v", err)
	}
}

func TestCreateTmpMemoRecord_LostSwapRollsBack(t *testing.T) {
	fx := newFixture(t)
	// a concurrent request claims the draft slot after our pointer check but before the swap
	err := fx.db.Callback().Create().After("gorm:create").Register("test:claim_tmp_memo", func(tx *gorm.DB) {
		if tx.Statement.Table != "records" {
			return
		}
		claim := tx.Session(&gorm.Session{NewDB: true}).Exec("UPDATE users SET tmp_memo = ? WHERE id = ?", 999999, fx.user.ID)
		if claim.Error != nil {
			tx.AddError(claim.Error)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	err = fx.svc.CreateTmpMemoRecord(context.Background(), fx.user.ID, "임시", content(60))
	if !errors.Is(err, ErrAlreadyTmpMemo) {
		t.Fatalf("expected ErrAlreadyTmpMemo, got %v", err)
	}
	var e *common.Error
	if !errors.As(err, &e) || e.Status != http.StatusConflict {
		t.Fatalf("expected a 409 error, got %v", err)
	}
	if n := fx.count(t, &models.Record{}); n != 0 {
		t.Fatalf("expected the draft insert rolled back, %d rows left", n)
	}
}

func TestTmpMemo_Validation(t *testing.T) {
	fx := newFixture(t)
	if err := fx.svc.CreateTmpMemoRecord(context.Background(), fx.user.ID, "t", content(10)); !errors.Is(err, ErrNotEnoughContent) {
		t.Fatalf("expected ErrNotEnoughContent, got %v", err)
	}
	if n := fx.count(t, &models.Record{}); n != 0 {
		t.Fatalf("expected nothing stored, got %d", n)
	}
}

func seedRecords(t *testing.T, fx *fixture, folderID *uint64, n int) []models.Record {
	t.Helper()
	recs := make([]models.Record, 0, n)
	for i := 0; i < n; i++ {
		rec := models.Record{UserID: fx.user.ID, FolderID: folderID, Type: models.RecordTypeMemo, Title: "r", Content: content(60)}
		if err := fx.db.Create(&rec).Error; err != nil {
			t.Fatalf("seed record: %v", err)
		}
		recs = append(recs, rec)
	}
	return recs
}

func TestGetRecordList_Pagination(t *testing.T) {
	tests := []struct {
		name        string
		records     int
		wantLen     int
		wantHasNext bool
	}{
		{"31 records", 31, 30, true},
		{"30 records", 30, 30, false},
		{"5 records", 5, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			recs := seedRecords(t, fx, &fx.folder.ID, tt.records)

			list, err := fx.svc.GetRecordList(context.Background(), fx.user.ID, AllFolders, 0)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list.Records) != tt.wantLen || list.HasNext != tt.wantHasNext {
				t.Fatalf("got %d records hasNext=%v, want %d hasNext=%v", len(list.Records), list.HasNext, tt.wantLen, tt.wantHasNext)
			}
			if list.Records[0].RecordID != recs[len(recs)-1].ID {
				t.Fatalf("expected newest record first")
			}
		})
	}
}

func TestGetRecordList_CursorAndFolder(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	other := &models.Folder{UserID: fx.user.ID, Title: "Study"}
	if err := fx.db.Create(other).Error; err != nil {
		t.Fatalf("seed folder: %v", err)
	}
	work := seedRecords(t, fx, &fx.folder.ID, 3)
	seedRecords(t, fx, &other.ID, 2)

	list, err := fx.svc.GetRecordList(ctx, fx.user.ID, "Work", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Folder != "Work" || len(list.Records) != 3 {
		t.Fatalf("unexpected folder list: %+v", list)
	}

	page, err := fx.svc.GetRecordList(ctx, fx.user.ID, "Work", work[2].ID)
	if err != nil {
		t.Fatalf("list after cursor: %v", err)
	}
	if len(page.Records) != 2 || page.Records[0].RecordID != work[1].ID {
		t.Fatalf("unexpected page: %+v", page.Records)
	}

	all, err := fx.svc.GetRecordList(ctx, fx.user.ID, "", 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if all.Folder != AllFolders || len(all.Records) != 5 {
		t.Fatalf("unexpected all list: %+v", all)
	}

	if _, err := fx.svc.GetRecordList(ctx, fx.user.ID, "Missing", 0); !errors.Is(err, folder.ErrFolderNotFound) {
		t.Fatalf("expected ErrFolderNotFound, got %v", err)
	}
}

func TestGetKeywordRecordList(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.gen.keyword = models.KeywordLeadership
	first, err := fx.svc.CreateMemoRecord(ctx, fx.user.ID, fx.memo(content(60)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	fx.gen.keyword = models.KeywordPlanning
	if _, err := fx.svc.CreateMemoRecord(ctx, fx.user.ID, fx.memo(content(60))); err != nil {
		t.Fatalf("create: %v", err)
	}
	fx.gen.keyword = models.KeywordLeadership
	third, err := fx.svc.CreateMemoRecord(ctx, fx.user.ID, fx.memo(content(60)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := fx.svc.GetKeywordRecordList(ctx, fx.user.ID, "리더십", 0)
	if err != nil {
		t.Fatalf("keyword list: %v", err)
	}
	if len(list.Records) != 2 || list.HasNext {
		t.Fatalf("unexpected keyword list: %+v", list)
	}
	if list.Records[0].RecordID != third.RecordID || list.Records[1].RecordID != first.RecordID {
		t.Fatalf("expected newest first, got %+v", list.Records)
	}
	if list.Records[0].Content != "리더십 역량" {
		t.Fatalf("expected ability content, got %q", list.Records[0].Content)
	}

	page, err := fx.svc.GetKeywordRecordList(ctx, fx.user.ID, "리더십", third.RecordID)
	if err != nil {
		t.Fatalf("keyword page: %v", err)
	}
	if len(page.Records) != 1 || page.Records[0].RecordID != first.RecordID {
		t.Fatalf("unexpected page: %+v", page.Records)
	}

	if _, err := fx.svc.GetKeywordRecordList(ctx, fx.user.ID, "요리", 0); !errors.Is(err, analysis.ErrInvalidKeyword) {
		t.Fatalf("expected ErrInvalidKeyword, got %v", err)
	}
}

func TestUpdateRecordFolder(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	other := dbtest.SeedUser(t, fx.db, "p2")
	study := &models.Folder{UserID: fx.user.ID, Title: "Study"}
	if err := fx.db.Create(study).Error; err != nil {
		t.Fatalf("seed folder: %v", err)
	}
	rec := seedRecords(t, fx, &fx.folder.ID, 1)[0]

	if err := fx.svc.UpdateRecordFolder(ctx, fx.user.ID, rec.ID, "Study"); err != nil {
		t.Fatalf("update folder: %v", err)
	}
	d, err := fx.svc.GetMemoRecordDetail(ctx, fx.user.ID, rec.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if d.Folder != "Study" {
		t.Fatalf("folder = %q, want Study", d.Folder)
	}

	if err := fx.svc.UpdateRecordFolder(ctx, other.ID, rec.ID, "Study"); !errors.Is(err, ErrRecordUnauthorized) {
		t.Fatalf("expected ErrRecordUnauthorized, got %v", err)
	}
	if err := fx.svc.UpdateRecordFolder(ctx, fx.user.ID, rec.ID, "Missing"); !errors.Is(err, folder.ErrFolderNotFound) {
		t.Fatalf("expected ErrFolderNotFound, got %v", err)
	}
}

func TestGetRecentRecordList(t *testing.T) {
	fx := newFixture(t)
	recs := seedRecords(t, fx, nil, 5)
	if err := fx.svc.CreateTmpMemoRecord(context.Background(), fx.user.ID, "draft", content(60)); err != nil {
		t.Fatalf("create tmp: %v", err)
	}

	items, err := fx.svc.GetRecentRecordList(context.Background(), fx.user.ID)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, want := range []uint64{recs[4].ID, recs[3].ID, recs[2].ID} {
		if items[i].RecordID != want {
			t.Fatalf("item %d = %d, want %d", i, items[i].RecordID, want)
		}
	}
	if items[0].Folder != "" {
		t.Fatalf("expected unfiled record, got folder %q", items[0].Folder)
	}
}
