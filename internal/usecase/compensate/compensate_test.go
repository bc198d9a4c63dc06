package compensate

import (
	"context"
	"errors"
	"testing"

	"github.com/andreyxaxa/Image-Moderator/internal/testsupport"
)

type fakeObjectRepo struct {
	deleted   []string
	deleteErr error
}

func (f *fakeObjectRepo) DownloadBytes(_ context.Context, _, _ string) ([]byte, error) {
	return nil, errors.New("not used")
}

func (f *fakeObjectRepo) Delete(_ context.Context, bucket, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, bucket+"/"+key)

	return nil
}

func uploadEvent(bucket, key string) []byte {
	return []byte(`{"Records":[{"eventSource":"aws:s3","eventName":"ObjectCreated:Put","s3":{"bucket":{"name":"` + bucket + `"},"object":{"key":"` + key + `"}}}]}`)
}

func TestRemoveOrphanDeletesObject(t *testing.T) {
	objects := &fakeObjectRepo{}
	uc := New(objects, testsupport.NopLogger{})

	uc.RemoveOrphan(context.Background(), uploadEvent("photos", "broken.txt"))

	if len(objects.deleted) != 1 {
		t.Fatalf("expected 1 deletion, got %d", len(objects.deleted))
	}
	if objects.deleted[0] != "photos/broken.txt" {
		t.Fatalf("unexpected deletion target %q", objects.deleted[0])
	}
}

func TestRemoveOrphanDropsForeignMessage(t *testing.T) {
	objects := &fakeObjectRepo{}
	uc := New(objects, testsupport.NopLogger{})

	uc.RemoveOrphan(context.Background(), []byte(`{"id":"x","value":"y"}`))

	if len(objects.deleted) != 0 {
		t.Fatalf("expected no deletions, got %d", len(objects.deleted))
	}
}

func TestRemoveOrphanSwallowsDeleteFailure(t *testing.T) {
	objects := &fakeObjectRepo{deleteErr: errors.New("access denied")}
	uc := New(objects, testsupport.NopLogger{})

	// must not panic and must not propagate the error
	uc.RemoveOrphan(context.Background(), uploadEvent("photos", "broken.txt"))
}
