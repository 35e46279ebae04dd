package domain

import "time"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type FailureKind string

const (
	FailureNone          FailureKind = ""
	FailureUnreachable   FailureKind = "unreachable"
	FailureModelMissing  FailureKind = "model_missing"
	FailureEmptyResponse FailureKind = "empty_response"
	FailureRejected      FailureKind = "rejected"
	FailureCanceled      FailureKind = "canceled"
)

// ChatOutcome is the result of one language model call. Exactly one of
// Content (success) or Failure/Err (failure) is meaningful.
type ChatOutcome struct {
	Model   string
	Content string
	Failure FailureKind
	Err     error
}

func (o ChatOutcome) OK() bool {
	return o.Failure == FailureNone
}

func ChatSuccess(model, content string) ChatOutcome {
	return ChatOutcome{Model: model, Content: content}
}

func ChatFailure(model string, kind FailureKind, err error) ChatOutcome {
	return ChatOutcome{Model: model, Failure: kind, Err: err}
}

const (
	SenderUser   = "user"
	SenderMentor = "nex"
)

type TopicChatMessage struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CourseID    string    `json:"course_id"`
	ModuleID    string    `json:"module_id"`
	Sender      string    `json:"sender"`
	Text        string    `json:"text"`
	TimeDisplay string    `json:"time_display"`
	CreatedAt   time.Time `json:"created_at"`
}

// MentorExchange is one question/answer round trip published for history persistence.
type MentorExchange struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	CourseID   string     `json:"course_id"`
	ModuleID   string     `json:"module_id"`
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	ResultType ResultType `json:"result_type"`
	CreatedAt  time.Time  `json:"created_at"`
}
