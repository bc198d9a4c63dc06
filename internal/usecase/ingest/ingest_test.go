package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andreyxaxa/Image-Moderator/internal/dto"
	"github.com/andreyxaxa/Image-Moderator/internal/entity"
	"github.com/andreyxaxa/Image-Moderator/internal/testsupport"
	"github.com/andreyxaxa/Image-Moderator/pkg/types/errs"
)

type fakeObjectRepo struct {
	objects map[string][]byte
	deleted []string
}

func (f *fakeObjectRepo) DownloadBytes(_ context.Context, bucket, key string) ([]byte, error) {
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, errs.ErrObjectNotFound
	}

	return data, nil
}

func (f *fakeObjectRepo) Delete(_ context.Context, bucket, key string) error {
	f.deleted = append(f.deleted, bucket+"/"+key)

	return nil
}

type fakeRecordRepo struct {
	records   map[string]*entity.ImageRecord
	createErr error
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[string]*entity.ImageRecord)}
}

func (f *fakeRecordRepo) Create(_ context.Context, record *entity.ImageRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.records[record.ID]; ok {
		return nil
	}
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

func (f *fakeRecordRepo) SetMetadataField(_ context.Context, id, field, value string) error {
	record, ok := f.records[id]
	if !ok {
		return errs.ErrRecordNotFound
	}
	switch field {
	case "caption":
		record.Caption = &value
	case "date":
		record.Date = &value
	case "name":
		record.Name = &value
	}

	return nil
}

func (f *fakeRecordRepo) SetReview(_ context.Context, id string, status entity.ReviewStatus, reason, reviewDate string) error {
	record, ok := f.records[id]
	if !ok {
		return errs.ErrRecordNotFound
	}
	record.Status = &status
	record.Reason = &reason
	record.ReviewDate = &reviewDate

	return nil
}

func uploadEvent(bucket, key string) []byte {
	return []byte(`{"Records":[{"eventSource":"aws:s3","eventName":"ObjectCreated:Put","s3":{"bucket":{"name":"` + bucket + `"},"object":{"key":"` + key + `"}}}]}`)
}

func TestProcessNotificationCreatesRecord(t *testing.T) {
	objects := &fakeObjectRepo{objects: map[string][]byte{"photos/sunset.png": []byte("bytes")}}
	records := newFakeRecordRepo()
	uc := New(objects, records, testsupport.NopLogger{})

	before := time.Now()
	outcome := uc.ProcessNotification(context.Background(), uploadEvent("photos", "sunset.png"))
	if outcome.Kind != dto.OutcomeApplied {
		t.Fatalf("expected applied outcome, got %v (%v)", outcome.Kind, outcome.Err)
	}

	record, ok := records.records["sunset.png"]
	if !ok {
		t.Fatal("expected record to be created")
	}
	if record.Bucket != "photos" {
		t.Fatalf("expected bucket %q, got %q", "photos", record.Bucket)
	}
	if record.UploadTime.Before(before) {
		t.Fatalf("upload time %v predates the call", record.UploadTime)
	}
	if record.Status != nil || record.Caption != nil {
		t.Fatal("new record must carry no moderation state")
	}
}

func TestProcessNotificationInvalidExtension(t *testing.T) {
	objects := &fakeObjectRepo{objects: map[string][]byte{"photos/notes.txt": []byte("bytes")}}
	records := newFakeRecordRepo()
	uc := New(objects, records, testsupport.NopLogger{})

	outcome := uc.ProcessNotification(context.Background(), uploadEvent("photos", "notes.txt"))
	if outcome.Kind != dto.OutcomeRetryable {
		t.Fatalf("expected retryable outcome, got %v", outcome.Kind)
	}
	if !errors.Is(outcome.Err, errs.ErrMessageInvalid) {
		t.Fatalf("expected ErrMessageInvalid, got %v", outcome.Err)
	}
	if len(records.records) != 0 {
		t.Fatal("no record should be created for a rejected upload")
	}
}

func TestProcessNotificationMissingObject(t *testing.T) {
	objects := &fakeObjectRepo{objects: map[string][]byte{}}
	records := newFakeRecordRepo()
	uc := New(objects, records, testsupport.NopLogger{})

	outcome := uc.ProcessNotification(context.Background(), uploadEvent("photos", "ghost.png"))
	if outcome.Kind != dto.OutcomeRetryable {
		t.Fatalf("expected retryable outcome, got %v", outcome.Kind)
	}
	if !errors.Is(outcome.Err, errs.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", outcome.Err)
	}
}

func TestProcessNotificationSkipsForeignMessage(t *testing.T) {
	uc := New(&fakeObjectRepo{}, newFakeRecordRepo(), testsupport.NopLogger{})

	outcome := uc.ProcessNotification(context.Background(), []byte(`{"id":"sunset.png","value":"A caption"}`))
	if outcome.Kind != dto.OutcomeSkipped {
		t.Fatalf("expected skipped outcome, got %v", outcome.Kind)
	}
}

func TestProcessNotificationCaseInsensitiveExtension(t *testing.T) {
	objects := &fakeObjectRepo{objects: map[string][]byte{"photos/SHOT.JPEG": []byte("bytes")}}
	records := newFakeRecordRepo()
	uc := New(objects, records, testsupport.NopLogger{})

	outcome := uc.ProcessNotification(context.Background(), uploadEvent("photos", "SHOT.JPEG"))
	if outcome.Kind != dto.OutcomeApplied {
		t.Fatalf("expected applied outcome, got %v (%v)", outcome.Kind, outcome.Err)
	}
}

func TestProcessNotificationCreateFailureRetryable(t *testing.T) {
	objects := &fakeObjectRepo{objects: map[string][]byte{"photos/sunset.png": []byte("bytes")}}
	records := newFakeRecordRepo()
	records.createErr = errors.New("connection refused")
	uc := New(objects, records, testsupport.NopLogger{})

	outcome := uc.ProcessNotification(context.Background(), uploadEvent("photos", "sunset.png"))
	if outcome.Kind != dto.OutcomeRetryable {
		t.Fatalf("expected retryable outcome, got %v", outcome.Kind)
	}
}

func TestValidExtension(t *testing.T) {
	for key, want := range map[string]bool{
		"a.png":     true,
		"a.jpeg":    true,
		"a.PNG":     true,
		"a.jpg":     false,
		"a.gif":     false,
		"noext":     false,
		"a.png.txt": false,
	} {
		if got := ValidExtension(key); got != want {
			t.Fatalf("ValidExtension(%q) = %v, want %v", key, got, want)
		}
	}
}
