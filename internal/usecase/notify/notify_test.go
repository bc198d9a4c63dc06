package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/andreyxaxa/Image-Moderator/internal/entity"
	"github.com/andreyxaxa/Image-Moderator/internal/testsupport"
)

type fakeMailSender struct {
	subjects []string
	bodies   []string
	sendErr  error
}

func (f *fakeMailSender) Send(_ context.Context, subject, htmlBody string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, htmlBody)

	return nil
}

func statusPtr(s entity.ReviewStatus) *entity.ReviewStatus { return &s }
func strPtr(s string) *string                              { return &s }

func modifyEvent(before, after *entity.ImageRecord) *entity.FeedEvent {
	return &entity.FeedEvent{Kind: entity.FeedModify, Before: before, After: after}
}

func TestHandleFeedEventSendsOnStatusChange(t *testing.T) {
	sender := &fakeMailSender{}
	uc := New(sender, testsupport.NopLogger{})

	event := modifyEvent(
		&entity.ImageRecord{ID: "sunset.png"},
		&entity.ImageRecord{
			ID:         "sunset.png",
			Status:     statusPtr(entity.StatusReject),
			Reason:     strPtr("Blurry"),
			ReviewDate: strPtr("2026-09-01"),
		},
	)

	if err := uc.HandleFeedEvent(context.Background(), event); err != nil {
		t.Fatalf("handle feed event: %v", err)
	}

	if len(sender.subjects) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(sender.subjects))
	}
	if sender.subjects[0] != "Photo Status Update: sunset.png" {
		t.Fatalf("unexpected subject %q", sender.subjects[0])
	}
	for _, want := range []string{"REJECTED", "Blurry", "2026-09-01", "#dc3545"} {
		if !strings.Contains(sender.bodies[0], want) {
			t.Fatalf("body missing %q", want)
		}
	}
}

func TestHandleFeedEventPassStatus(t *testing.T) {
	sender := &fakeMailSender{}
	uc := New(sender, testsupport.NopLogger{})

	event := modifyEvent(
		&entity.ImageRecord{ID: "sunset.png", Status: statusPtr(entity.StatusReject)},
		&entity.ImageRecord{ID: "sunset.png", Status: statusPtr(entity.StatusPass)},
	)

	if err := uc.HandleFeedEvent(context.Background(), event); err != nil {
		t.Fatalf("handle feed event: %v", err)
	}

	if len(sender.bodies) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(sender.bodies))
	}
	for _, want := range []string{"APPROVED", "#28a745", "No reason provided"} {
		if !strings.Contains(sender.bodies[0], want) {
			t.Fatalf("body missing %q", want)
		}
	}
}

func TestHandleFeedEventIgnoresNonTriggering(t *testing.T) {
	record := &entity.ImageRecord{ID: "sunset.png", Status: statusPtr(entity.StatusPass)}

	for name, event := range map[string]*entity.FeedEvent{
		"insert": {Kind: entity.FeedInsert, After: record},
		"remove": {Kind: entity.FeedRemove, Before: record},
		"modify without before": {
			Kind:  entity.FeedModify,
			After: record,
		},
		"modify without status": {
			Kind:   entity.FeedModify,
			Before: &entity.ImageRecord{ID: "sunset.png"},
			After:  &entity.ImageRecord{ID: "sunset.png", Caption: strPtr("Golden hour")},
		},
		"modify with unchanged status": {
			Kind:   entity.FeedModify,
			Before: record,
			After:  &entity.ImageRecord{ID: "sunset.png", Status: statusPtr(entity.StatusPass)},
		},
	} {
		sender := &fakeMailSender{}
		uc := New(sender, testsupport.NopLogger{})

		if err := uc.HandleFeedEvent(context.Background(), event); err != nil {
			t.Fatalf("%s: handle feed event: %v", name, err)
		}
		if len(sender.subjects) != 0 {
			t.Fatalf("%s: expected no mail, got %d", name, len(sender.subjects))
		}
	}
}

func TestHandleFeedEventSendFailure(t *testing.T) {
	sender := &fakeMailSender{sendErr: errors.New("smtp unavailable")}
	uc := New(sender, testsupport.NopLogger{})

	event := modifyEvent(
		&entity.ImageRecord{ID: "sunset.png"},
		&entity.ImageRecord{ID: "sunset.png", Status: statusPtr(entity.StatusPass)},
	)

	if err := uc.HandleFeedEvent(context.Background(), event); err == nil {
		t.Fatal("expected error when the sender fails")
	}
}

func TestShouldNotifyFirstStatus(t *testing.T) {
	event := modifyEvent(
		&entity.ImageRecord{ID: "sunset.png"},
		&entity.ImageRecord{ID: "sunset.png", Status: statusPtr(entity.StatusReject)},
	)

	if !ShouldNotify(event) {
		t.Fatal("first status assignment must notify")
	}
}
