package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
)

func newContentRepoWithMock(t *testing.T) (*ContentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return NewContentRepository(db), mock, func() { _ = db.Close() }
}

func TestFindCourseReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newContentRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, title, overview, source, level").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindCourse(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindCourseLoadsModulesInOrder(t *testing.T) {
	repo, mock, done := newContentRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, title, overview, source, level").
		WithArgs("budgeting").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "overview", "source", "level"}).
			AddRow("budgeting", "Budgeting Basics", "Plan your money", "Nex Academy", "Beginner"))
	mock.ExpectQuery("FROM course_modules").
		WithArgs("budgeting").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "summary", "theory_text"}).
			AddRow("m1", "Income", "Know your income", "Gross vs net").
			AddRow("m2", "Expenses", "Track spending", ""))
	mock.ExpectQuery("FROM module_qna").
		WithArgs("budgeting").
		WillReturnRows(sqlmock.NewRows([]string{"module_id", "question", "answer"}).
			AddRow("m1", "What is gross income?", "Income before taxes.").
			AddRow("m1", "What is net income?", "Income after taxes."))

	course, err := repo.FindCourse(context.Background(), "budgeting")
	if err != nil {
		t.Fatalf("FindCourse() error = %v", err)
	}
	if course.Source != "Nex Academy" || len(course.Modules) != 2 {
		t.Fatalf("unexpected course: %+v", course)
	}
	if course.Modules[0].ID != "m1" || course.Modules[0].TheoryText != "Gross vs net" {
		t.Fatalf("unexpected first module: %+v", course.Modules[0])
	}
	qna := course.Modules[0].FixedQnA
	if len(qna) != 2 || qna[0].Question != "What is gross income?" || qna[1].Answer != "Income after taxes." {
		t.Fatalf("unexpected first module qna: %+v", qna)
	}
	if course.Modules[1].FixedQnA == nil || len(course.Modules[1].FixedQnA) != 0 {
		t.Fatalf("module without qna must carry an empty list, got %#v", course.Modules[1].FixedQnA)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindModuleReusesQnALoadedWithCourse(t *testing.T) {
	repo, mock, done := newContentRepoWithMock(t)
	defer done()

	course := &domain.Course{
		ID: "budgeting",
		Modules: []domain.Module{
			{ID: "m1", FixedQnA: []domain.QnaPair{{Question: "Q1", Answer: "A1"}}},
			{ID: "m2", FixedQnA: []domain.QnaPair{}},
		},
	}

	module, err := repo.FindModule(context.Background(), course, "m2")
	if err != nil {
		t.Fatalf("FindModule() error = %v", err)
	}
	if module.ID != "m2" || module.FixedQnA == nil || len(module.FixedQnA) != 0 {
		t.Fatalf("unexpected module: %#v", module)
	}
	module, err = repo.FindModule(context.Background(), course, "m1")
	if err != nil {
		t.Fatalf("FindModule() error = %v", err)
	}
	module.FixedQnA[0].Answer = "changed"
	if course.Modules[0].FixedQnA[0].Answer != "A1" {
		t.Fatalf("course modules must not be mutated")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindModuleDefaultsToFirstAndLoadsQnA(t *testing.T) {
	repo, mock, done := newContentRepoWithMock(t)
	defer done()

	course := &domain.Course{
		ID: "budgeting",
		Modules: []domain.Module{
			{ID: "m1", Title: "Income"},
			{ID: "m2", Title: "Expenses"},
		},
	}
	mock.ExpectQuery("FROM module_qna").
		WithArgs("budgeting", "m1").
		WillReturnRows(sqlmock.NewRows([]string{"question", "answer"}).
			AddRow("What is gross income?", "Income before taxes."))

	module, err := repo.FindModule(context.Background(), course, "")
	if err != nil {
		t.Fatalf("FindModule() error = %v", err)
	}
	if module.ID != "m1" || len(module.FixedQnA) != 1 {
		t.Fatalf("unexpected module: %+v", module)
	}
	if module.FixedQnA[0].Answer != "Income before taxes." {
		t.Fatalf("unexpected qna: %+v", module.FixedQnA)
	}
	if len(course.Modules[0].FixedQnA) != 0 {
		t.Fatalf("course modules must not be mutated")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindModuleUnknownIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newContentRepoWithMock(t)
	defer done()

	course := &domain.Course{ID: "budgeting", Modules: []domain.Module{{ID: "m1"}}}
	_, err := repo.FindModule(context.Background(), course, "m9")
	if !domain.IsKind(err, domain.ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListCoursesCountsModules(t *testing.T) {
	repo, mock, done := newContentRepoWithMock(t)
	defer done()

	mock.ExpectQuery("FROM courses c").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "overview", "source", "level", "count"}).
			AddRow("budgeting", "Budgeting Basics", "", "Nex Academy", "Beginner", 2).
			AddRow("investing", "Investing 101", "", "Nex Academy", "Intermediate", 0))

	courses, err := repo.ListCourses(context.Background())
	if err != nil {
		t.Fatalf("ListCourses() error = %v", err)
	}
	if len(courses) != 2 || courses[0].ModuleCount != 2 || courses[1].ModuleCount != 0 {
		t.Fatalf("unexpected summaries: %+v", courses)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestImportCoursesUpsertsInTransaction(t *testing.T) {
	repo, mock, done := newContentRepoWithMock(t)
	defer done()

	courses := []domain.Course{{
		ID:     "budgeting",
		Title:  "Budgeting Basics",
		Source: "Nex Academy",
		Level:  "Beginner",
		Modules: []domain.Module{{
			ID:       "m1",
			Title:    "Income",
			FixedQnA: []domain.QnaPair{{Question: "Q1", Answer: "A1"}},
		}},
	}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO courses").
		WithArgs("budgeting", "Budgeting Basics", "", "Nex Academy", "Beginner", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM course_modules").
		WithArgs("budgeting").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO course_modules").
		WithArgs("budgeting", "m1", "Income", "", "", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO module_qna").
		WithArgs("budgeting", "m1", 0, "Q1", "A1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.ImportCourses(context.Background(), courses); err != nil {
		t.Fatalf("ImportCourses() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestImportCoursesRollsBackOnFailure(t *testing.T) {
	repo, mock, done := newContentRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO courses").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.ImportCourses(context.Background(), []domain.Course{{ID: "budgeting", Title: "B"}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEnsureSchemaTakesAdvisoryLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs(schemaLockKey).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS courses").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
