package metadata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/andreyxaxa/Image-Moderator/internal/dto"
	"github.com/andreyxaxa/Image-Moderator/internal/repo"
	"github.com/andreyxaxa/Image-Moderator/pkg/logger"
	"github.com/andreyxaxa/Image-Moderator/pkg/types/errs"
)

// Routing attribute value -> record field. The attribute casing is part of
// the contract; anything outside this table is rejected.
var fieldByType = map[string]string{
	"Caption": "caption",
	"Date":    "date",
	"name":    "name",
}

type UseCase struct {
	recordRepo repo.RecordRepo

	logger logger.Interface
}

func New(recordRepo repo.RecordRepo, l logger.Interface) *UseCase {
	return &UseCase{
		recordRepo: recordRepo,
		logger:     l,
	}
}

// ApplyUpdate merges one metadata field into an existing record. It never
// creates a record: updates for unknown ids are rejected with
// errs.ErrRecordNotFound and the caller drops the message.
func (uc *UseCase) ApplyUpdate(ctx context.Context, metadataType string, body []byte) error {
	field, ok := fieldByType[metadataType]
	if !ok {
		return fmt.Errorf("MetadataUseCase - ApplyUpdate - metadata type %q: %w", metadataType, errs.ErrMessageInvalid)
	}

	var update dto.MetadataUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("MetadataUseCase - ApplyUpdate - json.Unmarshal: %w", errs.ErrMessageInvalid)
	}

	if update.ID == "" || update.Value == "" {
		return fmt.Errorf("MetadataUseCase - ApplyUpdate - required fields id, value: %w", errs.ErrMessageInvalid)
	}

	if _, err := uc.recordRepo.GetByID(ctx, update.ID); err != nil {
		return fmt.Errorf("MetadataUseCase - ApplyUpdate - uc.recordRepo.GetByID: %w", err)
	}

	if err := uc.recordRepo.SetMetadataField(ctx, update.ID, field, update.Value); err != nil {
		return fmt.Errorf("MetadataUseCase - ApplyUpdate - uc.recordRepo.SetMetadataField: %w", err)
	}

	uc.logger.Info("metadata - set %s for image %s", field, update.ID)

	return nil
}

// ValidType reports whether the routing attribute value is in the allow-list.
func ValidType(metadataType string) bool {
	_, ok := fieldByType[metadataType]

	return ok
}
