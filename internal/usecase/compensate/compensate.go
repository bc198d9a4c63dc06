package compensate

import (
	"context"

	"github.com/andreyxaxa/Image-Moderator/internal/dto"
	"github.com/andreyxaxa/Image-Moderator/internal/repo"
	"github.com/andreyxaxa/Image-Moderator/pkg/logger"
)

type UseCase struct {
	objectRepo repo.ObjectRepo

	logger logger.Interface
}

func New(objectRepo repo.ObjectRepo, l logger.Interface) *UseCase {
	return &UseCase{
		objectRepo: objectRepo,
		logger:     l,
	}
}

// RemoveOrphan deletes the object named by a dead-lettered upload
// notification. Every failure is logged and swallowed: this consumer must
// always terminate successfully so its message is never reconsidered.
func (uc *UseCase) RemoveOrphan(ctx context.Context, body []byte) {
	notifications, err := dto.DecodeUploadEnvelope(body)
	if err != nil {
		uc.logger.Warn("compensate - dead-lettered message is not an upload notification, dropping")

		return
	}

	for _, notification := range notifications {
		err := uc.objectRepo.Delete(ctx, notification.Bucket, notification.Key)
		if err != nil {
			uc.logger.Error(err, "CompensateUseCase - RemoveOrphan - uc.objectRepo.Delete")

			continue
		}

		uc.logger.Info("compensate - deleted invalid image %s from bucket %s", notification.Key, notification.Bucket)
	}
}
