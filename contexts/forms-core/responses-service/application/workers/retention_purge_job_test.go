package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ieth0/forms/contexts/forms-core/responses-service/adapters/memory"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/forms-core/responses-service/domain/errors"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func TestRunOncePurgesExpiredResponses(t *testing.T) {
	now := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	passed := now.Add(-time.Hour)
	upcoming := now.Add(48 * time.Hour)

	store := memory.NewStore([]entities.Response{
		{ResponseID: "rsp_expired", AccountID: "acc_1", FormID: "frm_1", Payload: "{}", ExpiresAt: &passed, CreatedAt: now.Add(-72 * time.Hour)},
		{ResponseID: "rsp_live", AccountID: "acc_1", FormID: "frm_1", Payload: "{}", ExpiresAt: &upcoming, CreatedAt: now.Add(-time.Hour)},
		{ResponseID: "rsp_forever", AccountID: "acc_1", FormID: "frm_1", Payload: "{}", CreatedAt: now.Add(-time.Hour)},
	})
	if err := store.AddNote(context.Background(), entities.ResponseNote{
		NoteID:     "note_1",
		ResponseID: "rsp_expired",
		AuthorID:   "acc_1",
		Body:       "follow up",
		CreatedAt:  now.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("seed note: %v", err)
	}

	files := memory.NewFileStore()
	files.Put("permanent/acc_1/rsp_expired/resume.pdf", []byte("pdf"))
	files.Put("permanent/acc_1/rsp_live/resume.pdf", []byte("pdf"))

	job := RetentionPurgeJob{
		Repository: store,
		Files:      files,
		Clock:      fixedClock{now: now},
	}
	if err := job.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if _, err := store.GetResponse(context.Background(), "rsp_expired"); !errors.Is(err, domainerrors.ErrResponseNotFound) {
		t.Fatalf("expected expired row gone, got %v", err)
	}
	if _, err := store.GetResponse(context.Background(), "rsp_live"); err != nil {
		t.Fatalf("live row must survive: %v", err)
	}
	if _, err := store.GetResponse(context.Background(), "rsp_forever"); err != nil {
		t.Fatalf("row without expiry must survive: %v", err)
	}
	if notes, err := store.ListNotes(context.Background(), "rsp_expired"); err != nil || len(notes) != 0 {
		t.Fatalf("expected notes purged with response, got %v %v", notes, err)
	}
	if _, exists := files.Get("permanent/acc_1/rsp_expired/resume.pdf"); exists {
		t.Fatal("expected expired upload removed")
	}
	if _, exists := files.Get("permanent/acc_1/rsp_live/resume.pdf"); !exists {
		t.Fatal("live upload must survive")
	}
}

func TestRunOnceHonorsBatchSize(t *testing.T) {
	now := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	first := now.Add(-3 * time.Hour)
	second := now.Add(-2 * time.Hour)
	third := now.Add(-time.Hour)

	store := memory.NewStore([]entities.Response{
		{ResponseID: "rsp_1", AccountID: "acc_1", FormID: "frm_1", Payload: "{}", ExpiresAt: &first},
		{ResponseID: "rsp_2", AccountID: "acc_1", FormID: "frm_1", Payload: "{}", ExpiresAt: &second},
		{ResponseID: "rsp_3", AccountID: "acc_1", FormID: "frm_1", Payload: "{}", ExpiresAt: &third},
	})

	job := RetentionPurgeJob{
		Repository: store,
		Clock:      fixedClock{now: now},
		BatchSize:  2,
	}
	if err := job.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	// Oldest deadlines go first; the third row waits for the next cycle.
	if _, err := store.GetResponse(context.Background(), "rsp_1"); !errors.Is(err, domainerrors.ErrResponseNotFound) {
		t.Fatal("expected rsp_1 purged in first batch")
	}
	if _, err := store.GetResponse(context.Background(), "rsp_3"); err != nil {
		t.Fatalf("expected rsp_3 left for next cycle: %v", err)
	}

	if err := job.RunOnce(context.Background()); err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if _, err := store.GetResponse(context.Background(), "rsp_3"); !errors.Is(err, domainerrors.ErrResponseNotFound) {
		t.Fatal("expected rsp_3 purged in second batch")
	}
}

func TestRunOnceWithNothingExpiredIsNoOp(t *testing.T) {
	now := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	upcoming := now.Add(time.Hour)
	store := memory.NewStore([]entities.Response{
		{ResponseID: "rsp_live", AccountID: "acc_1", FormID: "frm_1", Payload: "{}", ExpiresAt: &upcoming},
	})

	job := RetentionPurgeJob{Repository: store, Clock: fixedClock{now: now}}
	if err := job.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if _, err := store.GetResponse(context.Background(), "rsp_live"); err != nil {
		t.Fatalf("live row must survive: %v", err)
	}
}
