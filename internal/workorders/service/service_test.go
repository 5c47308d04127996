package service

import (
	"context"
	"testing"

	"caseflow_backend/internal/workorders/transport"
	"caseflow_backend/platform/apperr"
	"caseflow_backend/platform/logger"

	"github.com/google/uuid"
)

func TestCreate_RejectsUnknownPriority(t *testing.T) {
	// Priority is validated before anything touches the database, so a
	// service without a repository is enough here.
	svc := New(nil, nil, logger.New("test"))

	_, err := svc.Create(context.Background(), uuid.New(), transport.CreateCaseRequest{
		Title:    "Leaking kitchen tap",
		Category: "plumbing",
		Priority: "apocalyptic",
	})
	if err == nil {
		t.Fatal("expected a validation error for an unknown priority")
	}
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}
