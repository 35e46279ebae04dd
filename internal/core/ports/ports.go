package ports

import (
	"context"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
)

// ContentProvider resolves courses and modules. Implementations are chosen once
// at construction time and are read-only for callers.
type ContentProvider interface {
	FindCourse(ctx context.Context, courseID string) (*domain.Course, error)
	// FindModule returns the first module of the course when moduleID is empty.
	FindModule(ctx context.Context, course *domain.Course, moduleID string) (*domain.Module, error)
	ListCourses(ctx context.Context) ([]domain.CourseSummary, error)
}

// ChatModel talks to the language model runtime. Chat never returns a raw
// error; failures are reported through the outcome.
type ChatModel interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) domain.ChatOutcome
	ListModels(ctx context.Context) ([]string, error)
}

// ExchangePublisher emits mentor exchanges for asynchronous history persistence.
type ExchangePublisher interface {
	PublishExchange(ctx context.Context, exchange domain.MentorExchange) error
}

// ExchangeSubscriber delivers published exchanges to a handler until ctx is done.
type ExchangeSubscriber interface {
	SubscribeExchanges(ctx context.Context, handler func(context.Context, domain.MentorExchange) error) error
}

// TopicChatStore persists per-user topic chat messages.
type TopicChatStore interface {
	AppendMessages(ctx context.Context, messages ...domain.TopicChatMessage) error
	ListTopicMessages(ctx context.Context, userID, courseID, moduleID string) ([]domain.TopicChatMessage, error)
}

// MentorObserver receives per-response signals for metrics.
type MentorObserver interface {
	ObserveMentorResult(endpoint string, resultType domain.ResultType)
	ObserveModelSubstitution(requested, substitute string)
}
