package folder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/suPer8Hu/corecord/internal/common"
	"github.com/suPer8Hu/corecord/internal/dbtest"
	"github.com/suPer8Hu/corecord/internal/models"
)

func titles(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func TestCreateFolder_OrderedByCreation(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	ctx := context.Background()
	u := dbtest.SeedUser(t, db, "p1")

	for _, title := range []string{"Work", "School", "열다섯글자폴더이름입니다아아"} {
		if _, err := svc.CreateFolder(ctx, u.ID, title); err != nil {
			t.Fatalf("create %q: %v", title, err)
		}
	}
	items, err := svc.ListFolders(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := strings.Join(titles(items), ",")
	if got != "Work,School,열다섯글자폴더이름입니다아아" {
		t.Fatalf("unexpected order: %s", got)
	}
}

func TestCreateFolder_Duplicate(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	ctx := context.Background()
	u := dbtest.SeedUser(t, db, "p1")
	other := dbtest.SeedUser(t, db, "p2")

	items, err := svc.CreateFolder(ctx, u.ID, "Work")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Work" {
		t.Fatalf("unexpected list: %+v", items)
	}

	if _, err := svc.CreateFolder(ctx, u.ID, "Work"); !errors.Is(err, ErrDuplicatedFolderTitle) {
		t.Fatalf("expected ErrDuplicatedFolderTitle, got %v", err)
	}
	items, _ = svc.ListFolders(ctx, u.ID)
	if len(items) != 1 {
		t.Fatalf("duplicate must not create a row, got %d folders", len(items))
	}

	// titles are unique per user, not globally
	if _, err := svc.CreateFolder(ctx, other.ID, "Work"); err != nil {
		t.Fatalf("other user's folder: %v", err)
	}
}

func TestCreateFolder_Validation(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	ctx := context.Background()
	u := dbtest.SeedUser(t, db, "p1")

	tests := []struct {
		title string
		want  error
	}{
		{"", ErrEmptyFolderTitle},
		{"   ", ErrEmptyFolderTitle},
		{strings.Repeat("a", 16), ErrOverflowFolderTitle},
		{strings.Repeat("가", 16), ErrOverflowFolderTitle},
	}
	for _, tt := range tests {
		if _, err := svc.CreateFolder(ctx, u.ID, tt.title); !errors.Is(err, tt.want) {
			t.Fatalf("title %q: expected %v, got %v", tt.title, tt.want, err)
		}
	}

	// structural validation runs before the principal is resolved
	if _, err := svc.CreateFolder(ctx, 9999, strings.Repeat("a", 16)); !errors.Is(err, ErrOverflowFolderTitle) {
		t.Fatalf("expected ErrOverflowFolderTitle for unknown user, got %v", err)
	}
	if _, err := svc.CreateFolder(ctx, 9999, "ok"); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown user, got %v", err)
	}
}

func TestDeleteFolder_DetachesRecords(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	ctx := context.Background()
	u := dbtest.SeedUser(t, db, "p1")

	if _, err := svc.CreateFolder(ctx, u.ID, "Work"); err != nil {
		t.Fatalf("create: %v", err)
	}
	items, err := svc.CreateFolder(ctx, u.ID, "Life")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	workID := items[0].FolderID

	rec := &models.Record{UserID: u.ID, FolderID: &workID, Type: models.RecordTypeMemo, Title: "t", Content: "c"}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("seed record: %v", err)
	}

	items, err = svc.DeleteFolder(ctx, u.ID, workID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Life" {
		t.Fatalf("unexpected list after delete: %+v", items)
	}

	var got models.Record
	if err := db.First(&got, rec.ID).Error; err != nil {
		t.Fatalf("record must survive folder deletion: %v", err)
	}
	if got.FolderID != nil {
		t.Fatalf("expected record detached, folder_id=%d", *got.FolderID)
	}
}

func TestDeleteAndUpdateFolder_Ownership(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	ctx := context.Background()
	owner := dbtest.SeedUser(t, db, "p1")
	intruder := dbtest.SeedUser(t, db, "p2")

	items, err := svc.CreateFolder(ctx, owner.ID, "Work")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := items[0].FolderID

	if _, err := svc.DeleteFolder(ctx, intruder.ID, id); !errors.Is(err, ErrFolderUnauthorized) {
		t.Fatalf("delete: expected ErrFolderUnauthorized, got %v", err)
	}
	if _, err := svc.UpdateFolder(ctx, intruder.ID, id, "Mine"); !errors.Is(err, ErrFolderUnauthorized) {
		t.Fatalf("update: expected ErrFolderUnauthorized, got %v", err)
	}
	if _, err := svc.DeleteFolder(ctx, owner.ID, id+100); !errors.Is(err, ErrFolderNotFound) {
		t.Fatalf("expected ErrFolderNotFound, got %v", err)
	}
}

func TestUpdateFolder_Rename(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	ctx := context.Background()
	u := dbtest.SeedUser(t, db, "p1")

	items, _ := svc.CreateFolder(ctx, u.ID, "Work")
	if _, err := svc.CreateFolder(ctx, u.ID, "Life"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.UpdateFolder(ctx, u.ID, items[0].FolderID, "Life"); !errors.Is(err, ErrDuplicatedFolderTitle) {
		t.Fatalf("expected ErrDuplicatedFolderTitle, got %v", err)
	}
	got, err := svc.UpdateFolder(ctx, u.ID, items[0].FolderID, "Career")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if strings.Join(titles(got), ",") != "Career,Life" {
		t.Fatalf("unexpected list: %+v", got)
	}
}
