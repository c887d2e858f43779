package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/slabstak/slabstak-backend/pkg/db/models"
	"github.com/slabstak/slabstak-backend/pkg/enums"
	pkgerrors "github.com/slabstak/slabstak-backend/pkg/errors"
)

type stubMessageRepo struct {
	messages   []models.OrderMessage
	created    *models.OrderMessage
	readOrder  uuid.UUID
	readReader uuid.UUID
}

func (s *stubMessageRepo) Create(ctx context.Context, message *models.OrderMessage) (*models.OrderMessage, error) {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	s.created = message
	return message, nil
}

func (s *stubMessageRepo) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderMessage, error) {
	return s.messages, nil
}

func (s *stubMessageRepo) MarkReadForReader(ctx context.Context, orderID, readerID uuid.UUID) error {
	s.readOrder = orderID
	s.readReader = readerID
	return nil
}

func newMessagesService(t *testing.T, messages MessageRepository, orders Repository) MessagesService {
	t.Helper()
	svc, err := NewMessagesService(MessagesParams{Messages: messages, Orders: orders})
	if err != nil {
		t.Fatalf("NewMessagesService: %v", err)
	}
	return svc
}

func TestSendMessageRequiresParticipant(t *testing.T) {
	order := seedOrder(enums.OrderStatusPaid)
	messages := &stubMessageRepo{}
	svc := newMessagesService(t, messages, &stubOrdersRepo{order: order})

	_, err := svc.Send(context.Background(), uuid.New(), order.ID, MessageInput{Message: "hello"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if messages.created != nil {
		t.Fatal("no message row should be written")
	}
}

func TestSendMessageUnknownOrderReturnsNotFound(t *testing.T) {
	svc := newMessagesService(t, &stubMessageRepo{}, &stubOrdersRepo{})

	_, err := svc.Send(context.Background(), uuid.New(), uuid.New(), MessageInput{Message: "hello"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSendMessageRejectsBlankBody(t *testing.T) {
	order := seedOrder(enums.OrderStatusPaid)
	messages := &stubMessageRepo{}
	svc := newMessagesService(t, messages, &stubOrdersRepo{order: order})

	_, err := svc.Send(context.Background(), order.BuyerID, order.ID, MessageInput{Message: "   "})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSendMessageTrimsAndDefaultsType(t *testing.T) {
	order := seedOrder(enums.OrderStatusPaid)
	messages := &stubMessageRepo{}
	svc := newMessagesService(t, messages, &stubOrdersRepo{order: order})

	created, err := svc.Send(context.Background(), order.SellerID, order.ID, MessageInput{Message: "  ships tomorrow  "})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if created.Message != "ships tomorrow" {
		t.Fatalf("expected trimmed body, got %q", created.Message)
	}
	if created.MessageType != defaultMessageType {
		t.Fatalf("expected default type, got %q", created.MessageType)
	}
	if created.SenderID != order.SellerID {
		t.Fatalf("sender not recorded: %s", created.SenderID)
	}
}

func TestListMessagesMarksCounterpartyRead(t *testing.T) {
	order := seedOrder(enums.OrderStatusPaid)
	messages := &stubMessageRepo{
		messages: []models.OrderMessage{
			{ID: uuid.New(), OrderID: order.ID, SenderID: order.SellerID, Message: "shipped"},
		},
	}
	svc := newMessagesService(t, messages, &stubOrdersRepo{order: order})

	out, err := svc.ListForOrder(context.Background(), order.BuyerID, order.ID)
	if err != nil {
		t.Fatalf("ListForOrder: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 message, got %d", len(out))
	}
	if messages.readOrder != order.ID || messages.readReader != order.BuyerID {
		t.Fatalf("read marking not scoped to reader: order=%s reader=%s", messages.readOrder, messages.readReader)
	}
}

func TestListMessagesRequiresParticipant(t *testing.T) {
	order := seedOrder(enums.OrderStatusPaid)
	messages := &stubMessageRepo{}
	svc := newMessagesService(t, messages, &stubOrdersRepo{order: order})

	_, err := svc.ListForOrder(context.Background(), uuid.New(), order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if messages.readOrder != uuid.Nil {
		t.Fatal("read marking must not run for outsiders")
	}
}
