package formsservice

import (
	"context"
	"errors"
	"testing"

	domainerrors "github.com/ieth0/forms/contexts/forms-core/forms-service/domain/errors"
	httptransport "github.com/ieth0/forms/contexts/forms-core/forms-service/transport/http"
)

func TestFormLifecycleFlow(t *testing.T) {
	module := NewInMemoryModule(nil, nil)

	created, err := module.Handler.CreateFormHandler(context.Background(), "acc-1", httptransport.CreateFormRequest{
		Name:          "Job applications",
		RetentionDays: 90,
		AlertEmails:   []string{"jobs@example.com"},
	})
	if err != nil {
		t.Fatalf("create form failed: %v", err)
	}
	if created.Form.Key == "" {
		t.Fatal("expected intake key on created form")
	}

	resolved, err := module.Handler.ResolveIntakeFormHandler(context.Background(), created.Form.Key)
	if err != nil {
		t.Fatalf("resolve intake failed: %v", err)
	}
	if resolved.FormID != created.Form.FormID {
		t.Fatalf("resolved wrong form: %s", resolved.FormID)
	}

	disabled := false
	_, err = module.Handler.UpdateFormHandler(context.Background(), "acc-1", created.Form.FormID, httptransport.UpdateFormRequest{
		Enabled: &disabled,
	})
	if err != nil {
		t.Fatalf("disable form failed: %v", err)
	}

	_, err = module.Handler.ResolveIntakeFormHandler(context.Background(), created.Form.Key)
	if !errors.Is(err, domainerrors.ErrFormDisabled) {
		t.Fatalf("disabled form must reject intake, got %v", err)
	}

	listed, err := module.Handler.ListFormsHandler(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("list forms failed: %v", err)
	}
	if len(listed.Items) != 1 {
		t.Fatalf("expected one form, got %d", len(listed.Items))
	}

	if err := module.Handler.DeleteFormHandler(context.Background(), "acc-1", created.Form.FormID); err != nil {
		t.Fatalf("delete form failed: %v", err)
	}
	_, err = module.Handler.GetFormHandler(context.Background(), "acc-1", created.Form.FormID)
	if !errors.Is(err, domainerrors.ErrFormNotFound) {
		t.Fatalf("expected deleted form gone, got %v", err)
	}
}

func TestIntakeLookupUnknownKey(t *testing.T) {
	module := NewInMemoryModule(nil, nil)

	_, err := module.Handler.ResolveIntakeFormHandler(context.Background(), "missing")
	if !errors.Is(err, domainerrors.ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
}
