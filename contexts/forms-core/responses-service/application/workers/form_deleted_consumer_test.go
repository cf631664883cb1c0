package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ieth0/forms/contexts/forms-core/responses-service/adapters/memory"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/forms-core/responses-service/domain/errors"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/ports"
)

func TestFormDeletedCleansEveryRow(t *testing.T) {
	now := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	store := memory.NewStore([]entities.Response{
		{ResponseID: "rsp_1", AccountID: "acc_1", FormID: "frm_gone", Payload: "{}", CreatedAt: now},
		{ResponseID: "rsp_2", AccountID: "acc_1", FormID: "frm_gone", Payload: "{}", Deleted: true, CreatedAt: now},
		{ResponseID: "rsp_3", AccountID: "acc_1", FormID: "frm_gone", Payload: "{}", Spam: true, CreatedAt: now},
		{ResponseID: "rsp_other", AccountID: "acc_1", FormID: "frm_kept", Payload: "{}", CreatedAt: now},
	})
	files := memory.NewFileStore()
	files.Put("permanent/acc_1/rsp_1/resume.pdf", []byte("pdf"))
	files.Put("permanent/acc_1/rsp_other/resume.pdf", []byte("pdf"))

	consumer := FormDeletedConsumer{
		Repository: store,
		Files:      files,
		BatchSize:  2,
	}
	err := consumer.handleFormEvent(context.Background(), ports.EventEnvelope{
		EventID:   "evt_1",
		EventType: "form.deleted",
		EntityID:  "frm_gone",
		Payload:   map[string]any{"form_id": "frm_gone"},
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	for _, id := range []string{"rsp_1", "rsp_2", "rsp_3"} {
		if _, err := store.GetResponse(context.Background(), id); !errors.Is(err, domainerrors.ErrResponseNotFound) {
			t.Fatalf("expected %s purged, got %v", id, err)
		}
	}
	if _, err := store.GetResponse(context.Background(), "rsp_other"); err != nil {
		t.Fatalf("other form's rows must survive: %v", err)
	}
	if _, exists := files.Get("permanent/acc_1/rsp_1/resume.pdf"); exists {
		t.Fatal("expected purged row's upload removed")
	}
	if _, exists := files.Get("permanent/acc_1/rsp_other/resume.pdf"); !exists {
		t.Fatal("other form's upload must survive")
	}
}

func TestFormDeletedIgnoresOtherEventTypes(t *testing.T) {
	store := memory.NewStore([]entities.Response{
		{ResponseID: "rsp_1", AccountID: "acc_1", FormID: "frm_1", Payload: "{}"},
	})
	consumer := FormDeletedConsumer{Repository: store}

	err := consumer.handleFormEvent(context.Background(), ports.EventEnvelope{
		EventID:   "evt_1",
		EventType: "form.updated",
		EntityID:  "frm_1",
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if _, err := store.GetResponse(context.Background(), "rsp_1"); err != nil {
		t.Fatalf("form.updated must not purge rows: %v", err)
	}
}
