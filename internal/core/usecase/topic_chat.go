package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
	"github.com/wealthplay/nex-mentor/internal/core/ports"
)

type TopicChatUseCase struct {
	store     ports.TopicChatStore
	publisher ports.ExchangePublisher
	now       func() time.Time
}

func NewTopicChatUseCase(store ports.TopicChatStore, publisher ports.ExchangePublisher) *TopicChatUseCase {
	return &TopicChatUseCase{
		store:     store,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// PublishExchange hands a finished mentor exchange to the history pipeline.
// Error results and anonymous users are not recorded.
func (uc *TopicChatUseCase) PublishExchange(ctx context.Context, userID string, req domain.MentorRequest, result domain.MentorResult) error {
	userID = strings.TrimSpace(userID)
	if userID == "" || result.Type == domain.ResultError || strings.TrimSpace(result.Answer) == "" {
		return nil
	}
	if uc.publisher == nil {
		return nil
	}

	exchange := domain.MentorExchange{
		ID:         uuid.NewString(),
		UserID:     userID,
		CourseID:   strings.TrimSpace(req.CourseID),
		ModuleID:   strings.TrimSpace(req.ModuleID),
		Question:   strings.TrimSpace(req.Question),
		Answer:     result.Answer,
		ResultType: result.Type,
		CreatedAt:  uc.now(),
	}
	if err := uc.publisher.PublishExchange(ctx, exchange); err != nil {
		return fmt.Errorf("publish mentor exchange: %w", err)
	}
	return nil
}

// RecordExchange persists both sides of an exchange as topic chat messages.
func (uc *TopicChatUseCase) RecordExchange(ctx context.Context, exchange domain.MentorExchange) error {
	if strings.TrimSpace(exchange.UserID) == "" || strings.TrimSpace(exchange.CourseID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "record exchange", errors.New("user_id and course_id are required"))
	}
	createdAt := exchange.CreatedAt
	if createdAt.IsZero() {
		createdAt = uc.now()
	}

	question := domain.TopicChatMessage{
		ID:          uuid.NewString(),
		UserID:      exchange.UserID,
		CourseID:    exchange.CourseID,
		ModuleID:    exchange.ModuleID,
		Sender:      domain.SenderUser,
		Text:        exchange.Question,
		TimeDisplay: createdAt.Format("15:04"),
		CreatedAt:   createdAt,
	}
	// The answer sorts after the question even when both share a timestamp.
	answeredAt := createdAt.Add(time.Microsecond)
	answer := domain.TopicChatMessage{
		ID:          uuid.NewString(),
		UserID:      exchange.UserID,
		CourseID:    exchange.CourseID,
		ModuleID:    exchange.ModuleID,
		Sender:      domain.SenderMentor,
		Text:        exchange.Answer,
		TimeDisplay: answeredAt.Format("15:04"),
		CreatedAt:   answeredAt,
	}

	if err := uc.store.AppendMessages(ctx, question, answer); err != nil {
		return fmt.Errorf("append exchange messages: %w", err)
	}
	return nil
}

func (uc *TopicChatUseCase) SaveMessage(ctx context.Context, msg domain.TopicChatMessage) (*domain.TopicChatMessage, error) {
	if strings.TrimSpace(msg.UserID) == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "save topic message", errors.New("user is required"))
	}
	if strings.TrimSpace(msg.CourseID) == "" || strings.TrimSpace(msg.Text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "save topic message", errors.New("course_id and text are required"))
	}
	switch msg.Sender {
	case "":
		msg.Sender = domain.SenderUser
	case domain.SenderUser, domain.SenderMentor:
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "save topic message", fmt.Errorf("unknown sender %q", msg.Sender))
	}

	msg.ID = uuid.NewString()
	msg.CreatedAt = uc.now()
	msg.TimeDisplay = msg.CreatedAt.Format("15:04")
	if err := uc.store.AppendMessages(ctx, msg); err != nil {
		return nil, fmt.Errorf("save topic message: %w", err)
	}
	return &msg, nil
}

// History returns the user's messages for a course topic. An empty moduleID
// selects the course-level thread.
func (uc *TopicChatUseCase) History(ctx context.Context, userID, courseID, moduleID string) ([]domain.TopicChatMessage, error) {
	if strings.TrimSpace(userID) == "" {
		return []domain.TopicChatMessage{}, nil
	}
	if moduleID == "None" {
		moduleID = ""
	}
	messages, err := uc.store.ListTopicMessages(ctx, userID, courseID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("list topic messages: %w", err)
	}
	if messages == nil {
		messages = []domain.TopicChatMessage{}
	}
	return messages, nil
}
