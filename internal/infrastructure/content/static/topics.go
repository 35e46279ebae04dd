package static

import (
	"strings"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
)

// topicFile is the lesson-chat catalog shape: topics hold lessons whose
// message threads alternate between questions and answers.
type topicFile struct {
	ID      string       `json:"id" yaml:"id"`
	Title   string       `json:"title" yaml:"title"`
	Summary string       `json:"summary" yaml:"summary"`
	Lessons []lessonFile `json:"lessons" yaml:"lessons"`
}

type lessonFile struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Messages []struct {
		Text string `json:"text" yaml:"text"`
	} `json:"messages" yaml:"messages"`
}

func (t topicFile) course() domain.Course {
	course := domain.Course{
		ID:       t.ID,
		Title:    t.Title,
		Overview: t.Summary,
		Modules:  make([]domain.Module, 0, len(t.Lessons)),
	}
	if course.Overview == "" {
		course.Overview = t.Title
	}
	for _, lesson := range t.Lessons {
		course.Modules = append(course.Modules, domain.Module{
			ID:       lesson.ID,
			Title:    lesson.Title,
			Summary:  lesson.Title,
			FixedQnA: lesson.pairs(),
		})
	}
	return course
}

// pairs treats a question-looking message followed by a substantive message
// as an authored Q&A pair.
func (l lessonFile) pairs() []domain.QnaPair {
	out := make([]domain.QnaPair, 0)
	for i := 0; i+1 < len(l.Messages); i++ {
		text := l.Messages[i].Text
		if !looksLikeQuestion(text) {
			continue
		}
		answer := l.Messages[i+1].Text
		if len(answer) <= 5 {
			continue
		}
		out = append(out, domain.QnaPair{
			Question: strings.TrimSpace(strings.ReplaceAll(text, "Q:", "")),
			Answer:   strings.TrimSpace(strings.ReplaceAll(answer, "A:", "")),
		})
	}
	return out
}

func looksLikeQuestion(text string) bool {
	return strings.Contains(text, "Q:") || (strings.Contains(text, "?") && len(text) > 10)
}
