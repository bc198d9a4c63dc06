package v1

import (
	"errors"
	"net/http"

	"github.com/andreyxaxa/Image-Moderator/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Image-Moderator/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

type metadataRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type statusRequest struct {
	Date   string `json:"date"`
	Update struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"update"`
}

func (r *V1) getImage(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if id == "" {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	record, err := r.upd.GetRecord(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "image not found")
		}
		r.logger.Error(err, "restapi - v1 - getImage")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	return ctx.Status(http.StatusOK).JSON(record)
}

func (r *V1) submitMetadata(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if id == "" {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	var req metadataRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid body")
	}

	err := r.upd.SubmitMetadata(ctx.UserContext(), id, req.Type, req.Value)
	if err != nil {
		if errors.Is(err, errs.ErrMessageInvalid) {
			return errorResponse(ctx, http.StatusBadRequest, "type must be one of Caption, Date, name; value is required")
		}
		r.logger.Error(err, "restapi - v1 - submitMetadata")

		return errorResponse(ctx, http.StatusInternalServerError, "publish problems")
	}

	return ctx.SendStatus(http.StatusAccepted)
}

func (r *V1) submitStatus(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if id == "" {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	var req statusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid body")
	}

	err := r.upd.SubmitStatus(ctx.UserContext(), id, req.Date, req.Update.Status, req.Update.Reason)
	if err != nil {
		if errors.Is(err, errs.ErrMessageInvalid) {
			return errorResponse(ctx, http.StatusBadRequest, "date, update.reason are required; update.status must be Pass or Reject")
		}
		r.logger.Error(err, "restapi - v1 - submitStatus")

		return errorResponse(ctx, http.StatusInternalServerError, "publish problems")
	}

	return ctx.SendStatus(http.StatusAccepted)
}

func errorResponse(ctx *fiber.Ctx, code int, msg string) error {
	return ctx.Status(code).JSON(response.Error{Message: msg})
}
