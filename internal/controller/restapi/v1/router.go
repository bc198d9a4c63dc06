package v1

import (
	"github.com/andreyxaxa/Image-Moderator/internal/usecase"
	"github.com/andreyxaxa/Image-Moderator/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

func NewImageRoutes(apiV1Group fiber.Router, upd usecase.UpdatesUseCase, l logger.Interface) {
	r := &V1{upd: upd, logger: l}

	{
		apiV1Group.Get("/images/:id", r.getImage)
		apiV1Group.Post("/images/:id/metadata", r.submitMetadata)
		apiV1Group.Post("/images/:id/status", r.submitStatus)
	}
}
