package ports

import (
	"context"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
)

// MentorResponder is the inbound contract for the two-layer mentor pipeline.
type MentorResponder interface {
	Respond(ctx context.Context, req domain.MentorRequest) domain.MentorResult
	GeneralInquiry(ctx context.Context, question string) domain.MentorResult
}

// CourseCatalog is the inbound read model for course content.
type CourseCatalog interface {
	ListCourses(ctx context.Context) ([]domain.CourseSummary, error)
	GetCourse(ctx context.Context, courseID string) (*domain.Course, error)
}

// TopicChatService is the inbound contract for topic chat history.
type TopicChatService interface {
	PublishExchange(ctx context.Context, userID string, req domain.MentorRequest, result domain.MentorResult) error
	RecordExchange(ctx context.Context, exchange domain.MentorExchange) error
	SaveMessage(ctx context.Context, msg domain.TopicChatMessage) (*domain.TopicChatMessage, error)
	History(ctx context.Context, userID, courseID, moduleID string) ([]domain.TopicChatMessage, error)
}
