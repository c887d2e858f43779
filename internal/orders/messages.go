package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/slabstak/slabstak-backend/pkg/db/models"
	pkgerrors "github.com/slabstak/slabstak-backend/pkg/errors"
	"github.com/slabstak/slabstak-backend/pkg/logger"
)

const defaultMessageType = "text"

// MessageInput carries one chat line from a participant.
type MessageInput struct {
	Message     string `json:"message" validate:"required"`
	MessageType string `json:"message_type,omitempty"`
}

// MessagesService exposes the per-order buyer/seller thread.
type MessagesService interface {
	ListForOrder(ctx context.Context, actorID, orderID uuid.UUID) ([]models.OrderMessage, error)
	Send(ctx context.Context, actorID, orderID uuid.UUID, input MessageInput) (*models.OrderMessage, error)
}

type messagesService struct {
	messages MessageRepository
	orders   Repository
	logg     *logger.Logger
}

// MessagesParams collects the dependencies required to build the messages service.
type MessagesParams struct {
	Messages MessageRepository
	Orders   Repository
	Logger   *logger.Logger
}

// NewMessagesService builds an order messages service with the required dependencies.
func NewMessagesService(p MessagesParams) (MessagesService, error) {
	if p.Messages == nil {
		return nil, fmt.Errorf("message repository required")
	}
	if p.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &messagesService{
		messages: p.Messages,
		orders:   p.Orders,
		logg:     p.Logger,
	}, nil
}

func (s *messagesService) ListForOrder(ctx context.Context, actorID, orderID uuid.UUID) ([]models.OrderMessage, error) {
	order, err := findOrderByID(ctx, s.orders, orderID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(order, actorID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a participant in this order")
	}

	out, err := s.messages.ListForOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list order messages")
	}

	// Fetching the thread counts as reading the counterparty's messages.
	if err := s.messages.MarkReadForReader(ctx, orderID, actorID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "mark order messages read")
	}
	return out, nil
}

func (s *messagesService) Send(ctx context.Context, actorID, orderID uuid.UUID, input MessageInput) (*models.OrderMessage, error) {
	body := strings.TrimSpace(input.Message)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message cannot be empty")
	}
	messageType := strings.TrimSpace(input.MessageType)
	if messageType == "" {
		messageType = defaultMessageType
	}

	order, err := findOrderByID(ctx, s.orders, orderID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(order, actorID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a participant in this order")
	}

	created, err := s.messages.Create(ctx, &models.OrderMessage{
		OrderID:     orderID,
		SenderID:    actorID,
		Message:     body,
		MessageType: messageType,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order message")
	}
	return created, nil
}
