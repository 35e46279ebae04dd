package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
	"github.com/wealthplay/nex-mentor/internal/core/ports"
)

const (
	DefaultMentorModel          = "phi3"
	DefaultFallbackExcerptChars = 400
)

// DefaultModelPreference is the substitution order used when the configured
// model is not installed.
var DefaultModelPreference = []string{"phi3", "llama3.2", "llama3.1", "llama3", "mistral", "gemma2", "qwen2.5"}

type MentorOptions struct {
	Model                string
	MatchCutoff          float64
	FallbackExcerptChars int
	ModelPreference      []string
}

func (o MentorOptions) normalize() MentorOptions {
	out := o
	if strings.TrimSpace(out.Model) == "" {
		out.Model = DefaultMentorModel
	}
	if out.MatchCutoff <= 0 || out.MatchCutoff > 1 {
		out.MatchCutoff = DefaultMatchCutoff
	}
	if out.FallbackExcerptChars <= 0 {
		out.FallbackExcerptChars = DefaultFallbackExcerptChars
	}
	if len(out.ModelPreference) == 0 {
		out.ModelPreference = DefaultModelPreference
	}
	return out
}

type MentorUseCase struct {
	content  ports.ContentProvider
	llm      ports.ChatModel
	observer ports.MentorObserver
	opts     MentorOptions
}

func NewMentorUseCase(
	content ports.ContentProvider,
	llm ports.ChatModel,
	observer ports.MentorObserver,
	opts MentorOptions,
) *MentorUseCase {
	return &MentorUseCase{
		content:  content,
		llm:      llm,
		observer: observer,
		opts:     opts.normalize(),
	}
}

func (uc *MentorUseCase) Respond(ctx context.Context, req domain.MentorRequest) domain.MentorResult {
	result := uc.respond(ctx, req)
	uc.observe("respond", result)
	slog.InfoContext(ctx, "mentor_response",
		"course_id", req.CourseID,
		"module_id", req.ModuleID,
		"type", string(result.Type),
		"confidence", result.Confidence,
	)
	return result
}

func (uc *MentorUseCase) respond(ctx context.Context, req domain.MentorRequest) domain.MentorResult {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return domain.ErrorResult("Please provide a question.",
			domain.WrapError(domain.ErrInvalidInput, "mentor respond", errors.New("question is empty")))
	}
	courseID := strings.TrimSpace(req.CourseID)
	if courseID == "" {
		return domain.ErrorResult("Please provide a course_id.",
			domain.WrapError(domain.ErrInvalidInput, "mentor respond", errors.New("course_id is empty")))
	}

	course, err := uc.content.FindCourse(ctx, courseID)
	if err != nil {
		if domain.IsKind(err, domain.ErrCourseNotFound) {
			return domain.ErrorResult(fmt.Sprintf("Course '%s' not found.", courseID), err)
		}
		return contentUnavailable(err)
	}

	moduleID := strings.TrimSpace(req.ModuleID)
	module, err := uc.content.FindModule(ctx, course, moduleID)
	if err != nil {
		if domain.IsKind(err, domain.ErrModuleNotFound) {
			if moduleID == "" {
				return domain.ErrorResult(fmt.Sprintf("Module not found in course '%s'.", courseID), err)
			}
			return domain.ErrorResult(fmt.Sprintf("Module '%s' not found in course '%s'.", moduleID, courseID), err)
		}
		return contentUnavailable(err)
	}

	if pair, _, ok := MatchFixedQnA(module.FixedQnA, question, uc.opts.MatchCutoff); ok {
		return domain.FixedQnAResult(pair, course.Source)
	}

	messages := BuildMentorPrompt(course, module, question)
	return uc.answerWithModel(ctx, course, module, messages)
}

func (uc *MentorUseCase) GeneralInquiry(ctx context.Context, question string) domain.MentorResult {
	result := uc.generalInquiry(ctx, question)
	uc.observe("general", result)
	return result
}

func (uc *MentorUseCase) generalInquiry(ctx context.Context, question string) domain.MentorResult {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.ErrorResult("Please provide a question.",
			domain.WrapError(domain.ErrInvalidInput, "general inquiry", errors.New("question is empty")))
	}

	outcome := uc.chatWithSubstitution(ctx, buildGeneralPrompt(question))
	if outcome.OK() {
		return domain.LLMResult(outcome.Content, "")
	}
	slog.WarnContext(ctx, "general_inquiry_failed", "failure", string(outcome.Failure), "error", outcome.Err)
	return domain.ErrorResult(
		"Sorry, the mentor could not reach the language model. Please ensure Ollama is running and try again.",
		domain.WrapError(domain.ErrTemporary, "general inquiry", outcomeError(outcome)),
	)
}

func (uc *MentorUseCase) observe(endpoint string, result domain.MentorResult) {
	if uc.observer != nil {
		uc.observer.ObserveMentorResult(endpoint, result.Type)
	}
}

func contentUnavailable(err error) domain.MentorResult {
	return domain.ErrorResult("Course content is temporarily unavailable. Please try again shortly.",
		domain.WrapError(domain.ErrTemporary, "mentor content lookup", err))
}
