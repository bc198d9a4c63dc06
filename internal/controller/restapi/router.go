package restapi

import (
	v1 "github.com/andreyxaxa/Image-Moderator/internal/controller/restapi/v1"
	"github.com/andreyxaxa/Image-Moderator/internal/usecase"
	"github.com/andreyxaxa/Image-Moderator/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

func NewRouter(app *fiber.App, upd usecase.UpdatesUseCase, l logger.Interface) {
	apiV1Group := app.Group("/v1")
	{
		v1.NewImageRoutes(apiV1Group, upd, l)
	}
}
