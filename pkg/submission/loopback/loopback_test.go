package loopback

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/submission"
)

func TestSubmitIsIdempotentPerKey(t *testing.T) {
	ids := []string{"conf-1", "conf-2"}
	s := New(WithIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))
	payload := submission.Payload{Role: model.RoleStudent}

	first, err := s.Submit(context.Background(), payload, "key-a")
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	again, err := s.Submit(context.Background(), payload, "key-a")
	if err != nil {
		t.Fatalf("repeat submit: %v", err)
	}
	if first != again || first.ConfirmationID != "conf-1" {
		t.Fatalf("repeat key produced a new receipt: %+v vs %+v", first, again)
	}

	other, err := s.Submit(context.Background(), payload, "key-b")
	if err != nil {
		t.Fatalf("second key: %v", err)
	}
	if other.ConfirmationID != "conf-2" {
		t.Fatalf("second key receipt = %+v", other)
	}
	if got := len(s.Records()); got != 2 {
		t.Fatalf("records = %d, want 2", got)
	}
}

func TestSubmitFailures(t *testing.T) {
	s := New()
	if _, err := s.Submit(context.Background(), submission.Payload{}, ""); !errors.Is(err, submission.ErrSubmissionFailed) {
		t.Fatalf("expected failure for empty key, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Submit(ctx, submission.Payload{}, "k")
	if !errors.Is(err, submission.ErrSubmissionFailed) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled failure, got %v", err)
	}
}
