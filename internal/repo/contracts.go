package repo

import (
	"context"

	"github.com/andreyxaxa/Image-Moderator/internal/entity"
)

type (
	// ObjectRepo is the object storage surface the pipeline needs: read back
	// an uploaded object and delete an orphaned one. The bucket travels with
	// the event, not with the repo.
	ObjectRepo interface {
		DownloadBytes(ctx context.Context, bucket, key string) ([]byte, error)
		Delete(ctx context.Context, bucket, key string) error
	}

	// RecordRepo owns image records. Every mutation appends a change feed
	// event with before/after snapshots in the same transaction.
	RecordRepo interface {
		Create(ctx context.Context, record *entity.ImageRecord) error
		GetByID(ctx context.Context, id string) (*entity.ImageRecord, error)
		SetMetadataField(ctx context.Context, id, field, value string) error
		SetReview(ctx context.Context, id string, status entity.ReviewStatus, reason, reviewDate string) error
	}

	// FeedRepo reads and maintains the change feed.
	FeedRepo interface {
		GetUndispatched(ctx context.Context, limit int) ([]*entity.FeedEvent, error)
		MarkDispatchedBatch(ctx context.Context, seqs []int64) error
		DeleteDispatched(ctx context.Context) (int64, error)
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)
