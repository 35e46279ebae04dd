package usecase

import (
	"fmt"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
)

const (
	maxFewShotExamples = 3
	theoryExcerptChars = 300
)

const mentorSystemPrompt = `You are an empathetic, practical financial mentor speaking to first-time earners. Keep answers short (2-4 short paragraphs), avoid jargon unless the user asks for definitions, include one simple actionable next step and note sources. When unsure, say you are unsure and suggest where to learn (cite the module source).`

const generalSystemPrompt = `You are a helpful financial advisor assistant for WealthPlay. Provide clear, practical advice about financial topics. Keep answers concise and actionable.`

// BuildMentorPrompt assembles the chat messages for a course question. The
// order is fixed: persona, course context, optional theory excerpt, few-shot
// examples, then the question.
func BuildMentorPrompt(course *domain.Course, module *domain.Module, question string) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, 4+2*maxFewShotExamples)
	messages = append(messages,
		domain.ChatMessage{Role: domain.RoleSystem, Content: mentorSystemPrompt},
		domain.ChatMessage{Role: domain.RoleSystem, Content: buildContextMessage(course, module)},
	)

	if excerpt := truncateRunes(module.TheoryText, theoryExcerptChars); excerpt != "" {
		messages = append(messages, domain.ChatMessage{
			Role:    domain.RoleSystem,
			Content: "Module theory (excerpt):\n" + excerpt,
		})
	}

	for idx, pair := range module.FixedQnA {
		if idx >= maxFewShotExamples {
			break
		}
		messages = append(messages,
			domain.ChatMessage{Role: domain.RoleUser, Content: pair.Question},
			domain.ChatMessage{Role: domain.RoleAssistant, Content: pair.Answer},
		)
	}

	return append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: question})
}

func buildGeneralPrompt(question string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: generalSystemPrompt},
		{Role: domain.RoleUser, Content: question},
	}
}

func buildContextMessage(course *domain.Course, module *domain.Module) string {
	return fmt.Sprintf(`Course: %s
Module: %s
Module Summary: %s
Source: %s`, course.Title, module.Title, module.Summary, course.Source)
}

// truncateRunes cuts s to at most limit characters without splitting a rune.
func truncateRunes(s string, limit int) string {
	if limit <= 0 || s == "" {
		return ""
	}
	count := 0
	for idx := range s {
		if count == limit {
			return s[:idx]
		}
		count++
	}
	return s
}
