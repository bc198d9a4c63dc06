package kafka

import (
	"context"

	"github.com/andreyxaxa/Image-Moderator/internal/dto"
	infrakafka "github.com/andreyxaxa/Image-Moderator/internal/infrastructure/kafka"
	"github.com/andreyxaxa/Image-Moderator/internal/usecase"
	"github.com/segmentio/kafka-go"
)

// Handlers bridging push-delivered messages to their use cases.

type MetadataHandler struct {
	uc usecase.MetadataUseCase
}

func NewMetadataHandler(uc usecase.MetadataUseCase) *MetadataHandler {
	return &MetadataHandler{uc: uc}
}

func (h *MetadataHandler) Handle(ctx context.Context, event kafka.Message) error {
	metadataType := infrakafka.Attribute(event, dto.AttrMetadataType)

	return h.uc.ApplyUpdate(ctx, metadataType, event.Value)
}

type StatusHandler struct {
	uc usecase.ReviewUseCase
}

func NewStatusHandler(uc usecase.ReviewUseCase) *StatusHandler {
	return &StatusHandler{uc: uc}
}

func (h *StatusHandler) Handle(ctx context.Context, event kafka.Message) error {
	return h.uc.ApplyDecision(ctx, event.Value)
}

type CompensateHandler struct {
	uc usecase.CompensateUseCase
}

func NewCompensateHandler(uc usecase.CompensateUseCase) *CompensateHandler {
	return &CompensateHandler{uc: uc}
}

func (h *CompensateHandler) Handle(ctx context.Context, event kafka.Message) error {
	h.uc.RemoveOrphan(ctx, event.Value)

	// absorb-and-terminate: the compensator never re-raises
	return nil
}
