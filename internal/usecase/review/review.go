package review

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/andreyxaxa/Image-Moderator/internal/dto"
	"github.com/andreyxaxa/Image-Moderator/internal/entity"
	"github.com/andreyxaxa/Image-Moderator/internal/repo"
	"github.com/andreyxaxa/Image-Moderator/pkg/logger"
	"github.com/andreyxaxa/Image-Moderator/pkg/types/errs"
)

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

// ApplyDecision merges a moderation decision into an existing record. The
// status/reason/review-date triple is written by one atomic update; partial
// application is never observable.
func (uc *UseCase) ApplyDecision(ctx context.Context, body []byte) error {
	var update dto.StatusUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("ReviewUseCase - ApplyDecision - json.Unmarshal: %w", errs.ErrMessageInvalid)
	}

	if update.ID == "" || update.Date == "" {
		return fmt.Errorf("ReviewUseCase - ApplyDecision - required fields id, date, update: %w", errs.ErrMessageInvalid)
	}

	if update.Update.Status == "" || update.Update.Reason == "" {
		return fmt.Errorf("ReviewUseCase - ApplyDecision - required fields update.status, update.reason: %w", errs.ErrMessageInvalid)
	}

	status := entity.ReviewStatus(update.Update.Status)
	if !status.Valid() {
		return fmt.Errorf("ReviewUseCase - ApplyDecision - status %q: %w", update.Update.Status, errs.ErrMessageInvalid)
	}

	if _, err := uc.recordRepo.GetByID(ctx, update.ID); err != nil {
		return fmt.Errorf("ReviewUseCase - ApplyDecision - uc.recordRepo.GetByID: %w", err)
	}

	err := uc.recordRepo.SetReview(ctx, update.ID, status, update.Update.Reason, update.Date)
	if err != nil {
		return fmt.Errorf("ReviewUseCase - ApplyDecision - uc.recordRepo.SetReview: %w", err)
	}

	uc.logger.Info("review - set status %s for image %s", status, update.ID)

	return nil
}
