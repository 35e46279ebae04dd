package domain

type ResultType string

const (
	ResultFixedQnA ResultType = "fixed_qna"
	ResultLLM      ResultType = "llm"
	ResultFallback ResultType = "fallback"
	ResultError    ResultType = "error"
)

// Confidence is a fixed provenance score per result type, not a calibrated probability.
const (
	ConfidenceFixedQnA = 0.99
	ConfidenceLLM      = 0.85
	ConfidenceFallback = 0.60
	ConfidenceError    = 0.0
)

type MentorRequest struct {
	CourseID string `json:"course_id"`
	ModuleID string `json:"module_id,omitempty"`
	Question string `json:"question"`
}

type MentorResult struct {
	Type            ResultType `json:"type"`
	Answer          string     `json:"answer"`
	Source          string     `json:"source"`
	Confidence      float64    `json:"confidence"`
	MatchedQuestion *string    `json:"matched_question"`

	// Cause is set on error results only and carries the typed error kind.
	Cause error `json:"-"`
}

func FixedQnAResult(pair QnaPair, source string) MentorResult {
	matched := pair.Question
	return MentorResult{
		Type:            ResultFixedQnA,
		Answer:          pair.Answer,
		Source:          source,
		Confidence:      ConfidenceFixedQnA,
		MatchedQuestion: &matched,
	}
}

func LLMResult(answer, source string) MentorResult {
	return MentorResult{
		Type:       ResultLLM,
		Answer:     answer,
		Source:     source,
		Confidence: ConfidenceLLM,
	}
}

func FallbackResult(answer, source string) MentorResult {
	return MentorResult{
		Type:       ResultFallback,
		Answer:     answer,
		Source:     source,
		Confidence: ConfidenceFallback,
	}
}

func ErrorResult(message string, cause error) MentorResult {
	return MentorResult{
		Type:       ResultError,
		Answer:     message,
		Confidence: ConfidenceError,
		Cause:      cause,
	}
}
