package usecase

import (
	"context"

	"github.com/andreyxaxa/Image-Moderator/internal/dto"
	"github.com/andreyxaxa/Image-Moderator/internal/entity"
)

type (
	// IngestUseCase validates queued upload notifications and creates records.
	IngestUseCase interface {
		ProcessNotification(ctx context.Context, body []byte) dto.Outcome
	}

	// CompensateUseCase removes objects whose notifications exhausted the
	// retry budget. It never fails: all errors are logged and swallowed so
	// its own input is never reconsidered.
	CompensateUseCase interface {
		RemoveOrphan(ctx context.Context, body []byte)
	}

	// MetadataUseCase merges a single metadata field into an existing record.
	MetadataUseCase interface {
		ApplyUpdate(ctx context.Context, metadataType string, body []byte) error
	}

	// ReviewUseCase merges a moderation decision into an existing record.
	ReviewUseCase interface {
		ApplyDecision(ctx context.Context, body []byte) error
	}

	// NotifyUseCase turns change feed events into status notification mail.
	NotifyUseCase interface {
		HandleFeedEvent(ctx context.Context, event *entity.FeedEvent) error
	}

	// UpdatesUseCase is the API-facing surface: publish update messages into
	// the routing topic and read records back.
	UpdatesUseCase interface {
		SubmitMetadata(ctx context.Context, id, metadataType, value string) error
		SubmitStatus(ctx context.Context, id, date, status, reason string) error
		GetRecord(ctx context.Context, id string) (*entity.ImageRecord, error)
	}
)
