package v1

import (
	"github.com/andreyxaxa/Image-Moderator/internal/usecase"
	"github.com/andreyxaxa/Image-Moderator/pkg/logger"
)

type V1 struct {
	upd    usecase.UpdatesUseCase
	logger logger.Interface
}
