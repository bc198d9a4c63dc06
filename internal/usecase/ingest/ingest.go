package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/andreyxaxa/Image-Moderator/internal/dto"
	"github.com/andreyxaxa/Image-Moderator/internal/entity"
	"github.com/andreyxaxa/Image-Moderator/internal/repo"
	"github.com/andreyxaxa/Image-Moderator/pkg/logger"
	"github.com/andreyxaxa/Image-Moderator/pkg/types/errs"
)

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".png":  true,
}

type UseCase struct {
	objectRepo repo.ObjectRepo
	recordRepo repo.RecordRepo

	logger logger.Interface
}

func New(objectRepo repo.ObjectRepo, recordRepo repo.RecordRepo, l logger.Interface) *UseCase {
	return &UseCase{
		objectRepo: objectRepo,
		recordRepo: recordRepo,
		logger:     l,
	}
}

// ProcessNotification handles one queued message. Messages that are not
// upload notifications are skipped without error; validation and I/O failures
// come back retryable so the dispatcher redelivers and eventually
// dead-letters them.
func (uc *UseCase) ProcessNotification(ctx context.Context, body []byte) dto.Outcome {
	notifications, err := dto.DecodeUploadEnvelope(body)
	if err != nil {
		if errors.Is(err, errs.ErrEnvelopeNotRecognized) {
			uc.logger.Info("ingest - not an upload notification, skipping")

			return dto.Skipped(err)
		}
		// recognized shape with an undecodable key
		return dto.Retryable(fmt.Errorf("IngestUseCase - ProcessNotification - dto.DecodeUploadEnvelope: %w", err))
	}

	if len(notifications) == 0 {
		return dto.Skipped(nil)
	}

	for _, notification := range notifications {
		if err := uc.processUpload(ctx, notification); err != nil {
			return dto.Retryable(err)
		}
	}

	return dto.Applied()
}

func (uc *UseCase) processUpload(ctx context.Context, notification dto.UploadNotification) error {
	uc.logger.Info("ingest - processing new image %s from bucket %s", notification.Key, notification.Bucket)

	if !ValidExtension(notification.Key) {
		return fmt.Errorf("IngestUseCase - processUpload - invalid image type %q: %w", notification.Key, errs.ErrMessageInvalid)
	}

	// readback: the object must exist and be readable before a record is created
	if _, err := uc.objectRepo.DownloadBytes(ctx, notification.Bucket, notification.Key); err != nil {
		return fmt.Errorf("IngestUseCase - processUpload - uc.objectRepo.DownloadBytes: %w", err)
	}

	record := &entity.ImageRecord{
		ID:         notification.Key,
		UploadTime: time.Now(),
		Bucket:     notification.Bucket,
	}

	if err := uc.recordRepo.Create(ctx, record); err != nil {
		return fmt.Errorf("IngestUseCase - processUpload - uc.recordRepo.Create: %w", err)
	}

	return nil
}

func ValidExtension(key string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(key))]
}
