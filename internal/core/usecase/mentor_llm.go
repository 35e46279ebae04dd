package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
)

const diagnosticNoteChars = 160

// answerWithModel never fails: a model answer becomes an llm result, anything
// else degrades to a fallback built from module content.
func (uc *MentorUseCase) answerWithModel(
	ctx context.Context,
	course *domain.Course,
	module *domain.Module,
	messages []domain.ChatMessage,
) domain.MentorResult {
	outcome := uc.chatWithSubstitution(ctx, messages)
	if outcome.OK() {
		return domain.LLMResult(outcome.Content, course.Source)
	}

	slog.WarnContext(ctx, "mentor_fallback",
		"course_id", course.ID,
		"module_id", module.ID,
		"model", outcome.Model,
		"failure", string(outcome.Failure),
		"error", outcome.Err,
	)
	return domain.FallbackResult(buildFallbackAnswer(module, outcome, uc.opts.FallbackExcerptChars), course.Source)
}

// chatWithSubstitution calls the configured model and, when it fails because
// the model is not installed, retries once with an installed substitute.
func (uc *MentorUseCase) chatWithSubstitution(ctx context.Context, messages []domain.ChatMessage) domain.ChatOutcome {
	outcome := uc.llm.Chat(ctx, uc.opts.Model, messages)
	if outcome.OK() || outcome.Failure == domain.FailureCanceled {
		return outcome
	}

	installed, err := uc.llm.ListModels(ctx)
	if err != nil {
		slog.WarnContext(ctx, "model_discovery_failed", "error", err)
		return outcome
	}
	substitute, ok := pickSubstituteModel(uc.opts.Model, installed, uc.opts.ModelPreference)
	if !ok {
		return outcome
	}

	slog.WarnContext(ctx, "model_substitution", "requested", uc.opts.Model, "substitute", substitute)
	retried := uc.llm.Chat(ctx, substitute, messages)
	if retried.OK() && uc.observer != nil {
		uc.observer.ObserveModelSubstitution(uc.opts.Model, substitute)
	}
	return retried
}

// pickSubstituteModel chooses a replacement only when requested is not
// installed: the first preferred name present, else the first installed model.
func pickSubstituteModel(requested string, installed, preference []string) (string, bool) {
	if len(installed) == 0 || hasModel(installed, requested) {
		return "", false
	}
	for _, preferred := range preference {
		for _, name := range installed {
			if modelBase(name) == modelBase(preferred) {
				return name, true
			}
		}
	}
	return installed[0], true
}

func hasModel(installed []string, requested string) bool {
	requested = strings.TrimSpace(requested)
	for _, name := range installed {
		if name == requested {
			return true
		}
		if !strings.Contains(requested, ":") && modelBase(name) == requested {
			return true
		}
	}
	return false
}

func modelBase(name string) string {
	base, _, _ := strings.Cut(strings.TrimSpace(name), ":")
	return base
}

func buildFallbackAnswer(module *domain.Module, outcome domain.ChatOutcome, excerptChars int) string {
	content := truncateRunes(strings.TrimSpace(module.TheoryText), excerptChars)
	if content == "" {
		content = truncateRunes(strings.TrimSpace(module.Summary), excerptChars)
	}
	if content == "" {
		content = fmt.Sprintf("Please review the module %q for the key ideas.", module.Title)
	}

	return fmt.Sprintf(
		"I can't reach the AI mentor right now, so here is what this module covers:\n\n%s\n\n(Note: %s)",
		content,
		truncateRunes(outcomeError(outcome).Error(), diagnosticNoteChars),
	)
}

func outcomeError(outcome domain.ChatOutcome) error {
	if outcome.Err != nil {
		return outcome.Err
	}
	if outcome.Failure != domain.FailureNone {
		return errors.New("language model " + string(outcome.Failure))
	}
	return errors.New("language model failure")
}
