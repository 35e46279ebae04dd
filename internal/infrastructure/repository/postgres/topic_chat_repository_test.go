package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
)

func TestAppendMessagesInsertsAllInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()
	repo := NewTopicChatRepository(db)

	at := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	msgs := []domain.TopicChatMessage{
		{ID: "u1", UserID: "42", CourseID: "budgeting", ModuleID: "m1", Sender: domain.SenderUser, Text: "hi", TimeDisplay: "09:30", CreatedAt: at},
		{ID: "n1", UserID: "42", CourseID: "budgeting", ModuleID: "m1", Sender: domain.SenderMentor, Text: "hello", TimeDisplay: "09:30", CreatedAt: at.Add(time.Microsecond)},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO topic_chat_messages").
		WithArgs("u1", "42", "budgeting", "m1", "user", "hi", "09:30", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO topic_chat_messages").
		WithArgs("n1", "42", "budgeting", "m1", "nex", "hello", "09:30", at.Add(time.Microsecond)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.AppendMessages(context.Background(), msgs...); err != nil {
		t.Fatalf("AppendMessages() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppendMessagesNoopOnEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	if err := NewTopicChatRepository(db).AppendMessages(context.Background()); err != nil {
		t.Fatalf("AppendMessages() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListTopicMessagesScansRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	at := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery("FROM topic_chat_messages").
		WithArgs("42", "budgeting", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "course_id", "module_id", "sender", "text", "time_display", "created_at"}).
			AddRow("u1", "42", "budgeting", "", "user", "hi", "09:30", at))

	msgs, err := NewTopicChatRepository(db).ListTopicMessages(context.Background(), "42", "budgeting", "")
	if err != nil {
		t.Fatalf("ListTopicMessages() error = %v", err)
	}
	if len(msgs) != 1 || msgs[0].Sender != domain.SenderUser || !msgs[0].CreatedAt.Equal(at) {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
