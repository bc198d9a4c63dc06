package persistent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/Image-Moderator/internal/entity"
	"github.com/andreyxaxa/Image-Moderator/pkg/postgres"
	"github.com/andreyxaxa/Image-Moderator/pkg/types/errs"
	"github.com/jackc/pgx/v5"
)

const (
	// Tables
	recordsTable = "image_records"

	// Columns
	idColumn         = "id"
	uploadTimeColumn = "upload_time"
	bucketColumn     = "bucket"
	captionColumn    = "caption"
	dateColumn       = "date"
	nameColumn       = "name"
	statusColumn     = "status"
	reasonColumn     = "reason"
	reviewDateColumn = "review_date"
)

// Columns the metadata merger may write. Guards the dynamic Set below.
var metadataColumns = map[string]bool{
	captionColumn: true,
	dateColumn:    true,
	nameColumn:    true,
}

type RecordRepo struct {
	*postgres.Postgres
}

func NewRecordRepo(pg *postgres.Postgres) *RecordRepo {
	return &RecordRepo{pg}
}

// Create inserts the record and appends the insert feed event in one
// transaction. A key collision from a redelivered upload event is a no-op:
// the existing record (and its upload time) stays untouched and no feed
// event is written.
func (r *RecordRepo) Create(ctx context.Context, record *entity.ImageRecord) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		sql, args, err := r.Builder.
			Insert(recordsTable).
			Columns(idColumn, uploadTimeColumn, bucketColumn).
			Values(record.ID, record.UploadTime, record.Bucket).
			Suffix("ON CONFLICT (" + idColumn + ") DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("RecordRepo - Create - r.Builder.ToSql: %w", err)
		}

		executor := r.GetExecutor(ctx)

		tag, err := executor.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("RecordRepo - Create - executor.Exec: %w", err)
		}

		if tag.RowsAffected() == 0 {
			return nil
		}

		if err := r.appendFeedEvent(ctx, entity.FeedInsert, record.ID, nil, record); err != nil {
			return fmt.Errorf("RecordRepo - Create - r.appendFeedEvent: %w", err)
		}

		return nil
	})
}

func (r *RecordRepo) GetByID(ctx context.Context, id string) (*entity.ImageRecord, error) {
	record, err := r.getByID(ctx, id, false)
	if err != nil {
		return nil, fmt.Errorf("RecordRepo - GetByID: %w", err)
	}

	return record, nil
}

// SetMetadataField overwrites one metadata-owned column and appends the
// modify feed event in the same transaction.
func (r *RecordRepo) SetMetadataField(ctx context.Context, id, field, value string) error {
	if !metadataColumns[field] {
		return fmt.Errorf("RecordRepo - SetMetadataField - field %q: %w", field, errs.ErrMessageInvalid)
	}

	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		before, err := r.getByID(ctx, id, true)
		if err != nil {
			return fmt.Errorf("RecordRepo - SetMetadataField - r.getByID: %w", err)
		}

		sql, args, err := r.Builder.
			Update(recordsTable).
			Set(field, value).
			Where(squirrel.Eq{idColumn: id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("RecordRepo - SetMetadataField - r.Builder.ToSql: %w", err)
		}

		executor := r.GetExecutor(ctx)

		if _, err := executor.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("RecordRepo - SetMetadataField - executor.Exec: %w", err)
		}

		after := cloneRecord(before)
		switch field {
		case captionColumn:
			after.Caption = &value
		case dateColumn:
			after.Date = &value
		case nameColumn:
			after.Name = &value
		}

		if err := r.appendFeedEvent(ctx, entity.FeedModify, id, before, after); err != nil {
			return fmt.Errorf("RecordRepo - SetMetadataField - r.appendFeedEvent: %w", err)
		}

		return nil
	})
}

// SetReview writes status, reason and review date as one atomic update and
// appends the modify feed event in the same transaction. A record never
// becomes observable with status set but reason or review date missing.
func (r *RecordRepo) SetReview(ctx context.Context, id string, status entity.ReviewStatus, reason, reviewDate string) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		before, err := r.getByID(ctx, id, true)
		if err != nil {
			return fmt.Errorf("RecordRepo - SetReview - r.getByID: %w", err)
		}

		sql, args, err := r.Builder.
			Update(recordsTable).
			Set(statusColumn, string(status)).
			Set(reasonColumn, reason).
			Set(reviewDateColumn, reviewDate).
			Where(squirrel.Eq{idColumn: id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("RecordRepo - SetReview - r.Builder.ToSql: %w", err)
		}

		executor := r.GetExecutor(ctx)

		if _, err := executor.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("RecordRepo - SetReview - executor.Exec: %w", err)
		}

		after := cloneRecord(before)
		after.Status = &status
		after.Reason = &reason
		after.ReviewDate = &reviewDate

		if err := r.appendFeedEvent(ctx, entity.FeedModify, id, before, after); err != nil {
			return fmt.Errorf("RecordRepo - SetReview - r.appendFeedEvent: %w", err)
		}

		return nil
	})
}

func (r *RecordRepo) getByID(ctx context.Context, id string, forUpdate bool) (*entity.ImageRecord, error) {
	builder := r.Builder.
		Select(
			idColumn,
			uploadTimeColumn,
			bucketColumn,
			captionColumn,
			dateColumn,
			nameColumn,
			statusColumn,
			reasonColumn,
			reviewDateColumn,
		).
		From(recordsTable).
		Where(squirrel.Eq{idColumn: id})

	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var record entity.ImageRecord
	err = executor.QueryRow(ctx, sql, args...).Scan(
		&record.ID,
		&record.UploadTime,
		&record.Bucket,
		&record.Caption,
		&record.Date,
		&record.Name,
		&record.Status,
		&record.Reason,
		&record.ReviewDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrRecordNotFound
		}
		return nil, fmt.Errorf("executor.QueryRow.Scan: %w", err)
	}

	return &record, nil
}

func cloneRecord(record *entity.ImageRecord) *entity.ImageRecord {
	clone := *record
	clone.Caption = clonePtr(record.Caption)
	clone.Date = clonePtr(record.Date)
	clone.Name = clonePtr(record.Name)
	clone.Reason = clonePtr(record.Reason)
	clone.ReviewDate = clonePtr(record.ReviewDate)

	if record.Status != nil {
		status := *record.Status
		clone.Status = &status
	}

	return &clone
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s

	return &v
}
