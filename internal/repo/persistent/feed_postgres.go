package persistent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/Image-Moderator/internal/entity"
	"github.com/andreyxaxa/Image-Moderator/pkg/postgres"
	"github.com/andreyxaxa/Image-Moderator/pkg/types/errs"
	"github.com/google/uuid"
)

const (
	// Table
	feedTable = "record_feed"

	// Columns
	feedSeqColumn        = "seq"
	feedEventIDColumn    = "event_id"
	feedRecordIDColumn   = "record_id"
	feedKindColumn       = "kind"
	feedOldImageColumn   = "old_image"
	feedNewImageColumn   = "new_image"
	feedOccurredAtColumn = "occurred_at"
	feedDispatchedColumn = "dispatched"
)

type FeedRepo struct {
	*postgres.Postgres
}

func NewFeedRepo(pg *postgres.Postgres) *FeedRepo {
	return &FeedRepo{pg}
}

// appendFeedEvent writes one change feed row. It runs on the executor carried
// by ctx, so inside a record mutation it joins that transaction; per-record
// feed order follows from seq being assigned at commit-visible insert time
// under the record row lock.
func (r *RecordRepo) appendFeedEvent(
	ctx context.Context,
	kind entity.FeedEventKind,
	recordID string,
	before, after *entity.ImageRecord,
) error {
	oldImage, err := marshalSnapshot(before)
	if err != nil {
		return fmt.Errorf("marshalSnapshot(before): %w", err)
	}

	newImage, err := marshalSnapshot(after)
	if err != nil {
		return fmt.Errorf("marshalSnapshot(after): %w", err)
	}

	sql, args, err := r.Builder.
		Insert(feedTable).
		Columns(
			feedEventIDColumn,
			feedRecordIDColumn,
			feedKindColumn,
			feedOldImageColumn,
			feedNewImageColumn,
			feedOccurredAtColumn,
		).
		Values(uuid.New(), recordID, string(kind), oldImage, newImage, time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	if _, err := executor.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("executor.Exec: %w", err)
	}

	return nil
}

func (r *FeedRepo) GetUndispatched(ctx context.Context, limit int) ([]*entity.FeedEvent, error) {
	sql, args, err := r.Builder.
		Select(
			feedSeqColumn,
			feedEventIDColumn,
			feedRecordIDColumn,
			feedKindColumn,
			feedOldImageColumn,
			feedNewImageColumn,
			feedOccurredAtColumn,
			feedDispatchedColumn,
		).
		From(feedTable).
		Where(squirrel.Eq{feedDispatchedColumn: false}).
		OrderBy(feedSeqColumn + " ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("FeedRepo - GetUndispatched - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("FeedRepo - GetUndispatched - executor.Query: %w", err)
	}
	defer rows.Close()

	events := make([]*entity.FeedEvent, 0, limit)
	for rows.Next() {
		var (
			event    entity.FeedEvent
			kind     string
			oldImage []byte
			newImage []byte
		)

		err = rows.Scan(
			&event.Seq,
			&event.EventID,
			&event.RecordID,
			&kind,
			&oldImage,
			&newImage,
			&event.OccurredAt,
			&event.Dispatched,
		)
		if err != nil {
			return nil, fmt.Errorf("FeedRepo - GetUndispatched - rows.Scan: %w", err)
		}

		event.Kind = entity.FeedEventKind(kind)

		event.Before, err = unmarshalSnapshot(oldImage)
		if err != nil {
			return nil, fmt.Errorf("FeedRepo - GetUndispatched - unmarshalSnapshot(before): %w", err)
		}

		event.After, err = unmarshalSnapshot(newImage)
		if err != nil {
			return nil, fmt.Errorf("FeedRepo - GetUndispatched - unmarshalSnapshot(after): %w", err)
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FeedRepo - GetUndispatched - rows.Err: %w", err)
	}

	return events, nil
}

func (r *FeedRepo) MarkDispatchedBatch(ctx context.Context, seqs []int64) error {
	if len(seqs) == 0 {
		return nil
	}

	sql, args, err := r.Builder.
		Update(feedTable).
		Set(feedDispatchedColumn, true).
		Where(squirrel.Eq{feedSeqColumn: seqs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("FeedRepo - MarkDispatchedBatch - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("FeedRepo - MarkDispatchedBatch - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("FeedRepo - MarkDispatchedBatch: %w", errs.ErrRecordNotFound)
	}

	return nil
}

func (r *FeedRepo) DeleteDispatched(ctx context.Context) (int64, error) {
	sql, args, err := r.Builder.
		Delete(feedTable).
		Where(squirrel.Eq{feedDispatchedColumn: true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("FeedRepo - DeleteDispatched - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("FeedRepo - DeleteDispatched - executor.Exec: %w", err)
	}

	return tag.RowsAffected(), nil
}

func marshalSnapshot(record *entity.ImageRecord) ([]byte, error) {
	if record == nil {
		return nil, nil
	}

	return json.Marshal(record)
}

func unmarshalSnapshot(data []byte) (*entity.ImageRecord, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var record entity.ImageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}

	return &record, nil
}
