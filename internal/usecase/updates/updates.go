package updates

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/andreyxaxa/Image-Moderator/internal/dto"
	"github.com/andreyxaxa/Image-Moderator/internal/entity"
	"github.com/andreyxaxa/Image-Moderator/internal/infrastructure"
	"github.com/andreyxaxa/Image-Moderator/internal/repo"
	"github.com/andreyxaxa/Image-Moderator/internal/usecase/metadata"
	"github.com/andreyxaxa/Image-Moderator/pkg/logger"
	"github.com/andreyxaxa/Image-Moderator/pkg/types/errs"
)

type UseCase struct {
	publisher  infrastructure.MessagePublisher
	recordRepo repo.RecordRepo
	topic      string

	logger logger.Interface
}

func New(publisher infrastructure.MessagePublisher, recordRepo repo.RecordRepo, topic string, l logger.Interface) *UseCase {
	return &UseCase{
		publisher:  publisher,
		recordRepo: recordRepo,
		topic:      topic,
		logger:     l,
	}
}

// SubmitMetadata publishes a metadata update into the routing topic. The
// merger re-validates on consumption; rejecting bad input here just spares a
// pointless round trip.
func (uc *UseCase) SubmitMetadata(ctx context.Context, id, metadataType, value string) error {
	if id == "" || value == "" {
		return fmt.Errorf("UpdatesUseCase - SubmitMetadata - required fields id, value: %w", errs.ErrMessageInvalid)
	}

	if !metadata.ValidType(metadataType) {
		return fmt.Errorf("UpdatesUseCase - SubmitMetadata - metadata type %q: %w", metadataType, errs.ErrMessageInvalid)
	}

	body, err := json.Marshal(dto.MetadataUpdate{ID: id, Value: value})
	if err != nil {
		return fmt.Errorf("UpdatesUseCase - SubmitMetadata - json.Marshal: %w", err)
	}

	attrs := map[string]string{dto.AttrMetadataType: metadataType}

	if err := uc.publisher.Publish(ctx, uc.topic, []byte(id), body, attrs); err != nil {
		return fmt.Errorf("UpdatesUseCase - SubmitMetadata - uc.publisher.Publish: %w", err)
	}

	return nil
}

// SubmitStatus publishes a moderation decision into the routing topic.
func (uc *UseCase) SubmitStatus(ctx context.Context, id, date, status, reason string) error {
	if id == "" || date == "" || status == "" || reason == "" {
		return fmt.Errorf("UpdatesUseCase - SubmitStatus - required fields id, date, status, reason: %w", errs.ErrMessageInvalid)
	}

	if !entity.ReviewStatus(status).Valid() {
		return fmt.Errorf("UpdatesUseCase - SubmitStatus - status %q: %w", status, errs.ErrMessageInvalid)
	}

	body, err := json.Marshal(dto.StatusUpdate{
		ID:   id,
		Date: date,
		Update: dto.StatusChange{
			Status: status,
			Reason: reason,
		},
	})
	if err != nil {
		return fmt.Errorf("UpdatesUseCase - SubmitStatus - json.Marshal: %w", err)
	}

	attrs := map[string]string{dto.AttrMessageType: dto.MessageTypeStatusUpdate}

	if err := uc.publisher.Publish(ctx, uc.topic, []byte(id), body, attrs); err != nil {
		return fmt.Errorf("UpdatesUseCase - SubmitStatus - uc.publisher.Publish: %w", err)
	}

	return nil
}

func (uc *UseCase) GetRecord(ctx context.Context, id string) (*entity.ImageRecord, error) {
	record, err := uc.recordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("UpdatesUseCase - GetRecord - uc.recordRepo.GetByID: %w", err)
	}

	return record, nil
}
