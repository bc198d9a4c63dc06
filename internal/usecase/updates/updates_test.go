package updates

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/andreyxaxa/Image-Moderator/internal/dto"
	"github.com/andreyxaxa/Image-Moderator/internal/entity"
	"github.com/andreyxaxa/Image-Moderator/internal/testsupport"
	"github.com/andreyxaxa/Image-Moderator/pkg/types/errs"
)

type published struct {
	topic string
	key   []byte
	value []byte
	attrs map[string]string
}

type fakePublisher struct {
	messages []published
}

func (f *fakePublisher) Publish(_ context.Context, topic string, key, value []byte, attrs map[string]string) error {
	f.messages = append(f.messages, published{topic, key, value, attrs})

	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeRecordRepo struct {
	records map[string]*entity.ImageRecord
}

func (f *fakeRecordRepo) Create(_ context.Context, record *entity.ImageRecord) error {
	f.records[record.ID] = record

	return nil
}

func (f *fakeRecordRepo) GetByID(_ context.Context, id string) (*entity.ImageRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}

	return record, nil
}

func (f *fakeRecordRepo) SetMetadataField(_ context.Context, _, _, _ string) error {
	return errors.New("not used")
}

func (f *fakeRecordRepo) SetReview(_ context.Context, _ string, _ entity.ReviewStatus, _, _ string) error {
	return errors.New("not used")
}

func TestSubmitMetadataPublishesWithRoutingAttribute(t *testing.T) {
	publisher := &fakePublisher{}
	uc := New(publisher, &fakeRecordRepo{}, "image-events", testsupport.NopLogger{})

	err := uc.SubmitMetadata(context.Background(), "sunset.png", "Caption", "Golden hour")
	if err != nil {
		t.Fatalf("submit metadata: %v", err)
	}

	if len(publisher.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(publisher.messages))
	}

	msg := publisher.messages[0]
	if msg.topic != "image-events" {
		t.Fatalf("expected ingress topic, got %q", msg.topic)
	}
	if string(msg.key) != "sunset.png" {
		t.Fatalf("expected key keyed by image id, got %q", msg.key)
	}
	if msg.attrs[dto.AttrMetadataType] != "Caption" {
		t.Fatalf("expected routing attribute Caption, got %q", msg.attrs[dto.AttrMetadataType])
	}

	var update dto.MetadataUpdate
	if err := json.Unmarshal(msg.value, &update); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if update.ID != "sunset.png" || update.Value != "Golden hour" {
		t.Fatalf("unexpected payload %+v", update)
	}
}

func TestSubmitMetadataRejectsInvalidType(t *testing.T) {
	publisher := &fakePublisher{}
	uc := New(publisher, &fakeRecordRepo{}, "image-events", testsupport.NopLogger{})

	err := uc.SubmitMetadata(context.Background(), "sunset.png", "Title", "x")
	if !errors.Is(err, errs.ErrMessageInvalid) {
		t.Fatalf("expected ErrMessageInvalid, got %v", err)
	}
	if len(publisher.messages) != 0 {
		t.Fatal("invalid update must not be published")
	}
}

func TestSubmitStatusPublishesWithRoutingAttribute(t *testing.T) {
	publisher := &fakePublisher{}
	uc := New(publisher, &fakeRecordRepo{}, "image-events", testsupport.NopLogger{})

	err := uc.SubmitStatus(context.Background(), "sunset.png", "2026-09-01", "Pass", "Looks great")
	if err != nil {
		t.Fatalf("submit status: %v", err)
	}

	msg := publisher.messages[0]
	if msg.attrs[dto.AttrMessageType] != dto.MessageTypeStatusUpdate {
		t.Fatalf("expected status_update routing attribute, got %q", msg.attrs[dto.AttrMessageType])
	}

	var update dto.StatusUpdate
	if err := json.Unmarshal(msg.value, &update); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if update.Update.Status != "Pass" || update.Update.Reason != "Looks great" || update.Date != "2026-09-01" {
		t.Fatalf("unexpected payload %+v", update)
	}
}

func TestSubmitStatusRejectsUnknownStatus(t *testing.T) {
	publisher := &fakePublisher{}
	uc := New(publisher, &fakeRecordRepo{}, "image-events", testsupport.NopLogger{})

	err := uc.SubmitStatus(context.Background(), "sunset.png", "2026-09-01", "Maybe", "Hmm")
	if !errors.Is(err, errs.ErrMessageInvalid) {
		t.Fatalf("expected ErrMessageInvalid, got %v", err)
	}
	if len(publisher.messages) != 0 {
		t.Fatal("invalid decision must not be published")
	}
}

func TestGetRecord(t *testing.T) {
	records := &fakeRecordRepo{records: map[string]*entity.ImageRecord{
		"sunset.png": {ID: "sunset.png", Bucket: "photos"},
	}}
	uc := New(&fakePublisher{}, records, "image-events", testsupport.NopLogger{})

	record, err := uc.GetRecord(context.Background(), "sunset.png")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record.Bucket != "photos" {
		t.Fatalf("unexpected record %+v", record)
	}

	if _, err := uc.GetRecord(context.Background(), "ghost.png"); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
