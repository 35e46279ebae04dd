package static

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadJSONCourseList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	writeFile(t, path, `[
  {"id": "mutual-sip", "title": "Mutual Funds & SIPs", "source": "AMFI",
   "modules": [
     {"id": "m1", "title": "SIP basics", "summary": "What SIPs are.",
      "fixed_qna": [{"q": "What is a SIP?", "a": "A systematic investment plan."},
                    {"question": "Is a SIP safe?", "answer": "It carries market risk."}]}
   ]}
]`)

	idx, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	course, err := idx.FindCourse(context.Background(), "mutual-sip")
	if err != nil {
		t.Fatalf("FindCourse() error = %v", err)
	}
	if course.Source != "AMFI" {
		t.Fatalf("unexpected source %q", course.Source)
	}
	module, err := idx.FindModule(context.Background(), course, "")
	if err != nil {
		t.Fatalf("FindModule() error = %v", err)
	}
	if len(module.FixedQnA) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(module.FixedQnA))
	}
	if module.FixedQnA[0].Question != "What is a SIP?" || module.FixedQnA[1].Answer != "It carries market risk." {
		t.Fatalf("unexpected pairs: %+v", module.FixedQnA)
	}
}

func TestLoadYAMLCoursesObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.yaml")
	writeFile(t, path, `courses:
  - id: budgeting
    title: Budgeting & Saving
    modules:
      - id: m1
        title: 50/30/20
        theory_text: Needs, wants and savings.
        fixed_qna:
          - q: What is 50/30/20?
            a: A budgeting rule.
`)

	idx, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	course, err := idx.FindCourse(context.Background(), "budgeting")
	if err != nil {
		t.Fatalf("FindCourse() error = %v", err)
	}
	module, err := idx.FindModule(context.Background(), course, "m1")
	if err != nil {
		t.Fatalf("FindModule() error = %v", err)
	}
	if module.TheoryText != "Needs, wants and savings." {
		t.Fatalf("unexpected theory text %q", module.TheoryText)
	}
	if len(module.FixedQnA) != 1 || module.FixedQnA[0].Answer != "A budgeting rule." {
		t.Fatalf("unexpected pairs: %+v", module.FixedQnA)
	}
}

func TestLoadTopicsCatalogPairsLessonMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "financial_course.json")
	writeFile(t, path, `{"topics": [
  {"id": "money-basics", "title": "Money Basics", "lessons": [
    {"id": "l1", "title": "Income", "messages": [
      {"text": "Welcome!"},
      {"text": "Q: What is gross income?"},
      {"text": "A: Income before taxes and deductions."},
      {"text": "ok"}
    ]}
  ]}
]}`)

	idx, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	course, err := idx.FindCourse(context.Background(), "money-basics")
	if err != nil {
		t.Fatalf("FindCourse() error = %v", err)
	}
	if course.Overview != "Money Basics" {
		t.Fatalf("expected overview to fall back to title, got %q", course.Overview)
	}
	module := course.Modules[0]
	if len(module.FixedQnA) != 1 {
		t.Fatalf("expected 1 pair, got %+v", module.FixedQnA)
	}
	if module.FixedQnA[0].Question != "What is gross income?" || module.FixedQnA[0].Answer != "Income before taxes and deductions." {
		t.Fatalf("unexpected pair: %+v", module.FixedQnA[0])
	}
}

func TestLoadFolderLayout(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "mutual-funds-sips", "course.yaml"), "title: Mutual Funds & SIPs\nsource: AMFI investor education\n")
	writeFile(t, filepath.Join(root, "mutual-funds-sips", "m2-choosing", "qna.json"), `[{"question": "How do I pick a fund?", "answer": "Match it to your goal."}]`)
	writeFile(t, filepath.Join(root, "mutual-funds-sips", "m1-basics", "qna.json"), `[{"question": "What is a SIP?", "answer": "`+strings.Repeat("s", 250)+`"}]`)
	writeFile(t, filepath.Join(root, "mutual-funds-sips", "m1-basics", "flash_cards.json"), `[{"theory_title": "SIP Basics", "theory_content": "Invest a fixed amount regularly."}]`)
	writeFile(t, filepath.Join(root, "stock-market-101", "m1", "qna.json"), `not json`)

	idx, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	summaries, err := idx.ListCourses(context.Background())
	if err != nil {
		t.Fatalf("ListCourses() error = %v", err)
	}
	if len(summaries) != 2 || summaries[0].ID != "mutual-funds-sips" || summaries[1].Title != "Stock Market 101" {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}

	course, err := idx.FindCourse(context.Background(), "mutual-funds-sips")
	if err != nil {
		t.Fatalf("FindCourse() error = %v", err)
	}
	if course.Source != "AMFI investor education" {
		t.Fatalf("unexpected source %q", course.Source)
	}
	first, err := idx.FindModule(context.Background(), course, "")
	if err != nil {
		t.Fatalf("FindModule() error = %v", err)
	}
	if first.ID != "m1-basics" || first.Title != "SIP Basics" {
		t.Fatalf("expected sorted first module with flash card title, got %+v", first)
	}
	if first.TheoryText != "Invest a fixed amount regularly." {
		t.Fatalf("unexpected theory text %q", first.TheoryText)
	}
	if len([]rune(first.Summary)) != summaryFromAnswerChars {
		t.Fatalf("expected summary truncated to %d chars, got %d", summaryFromAnswerChars, len(first.Summary))
	}

	broken, err := idx.FindCourse(context.Background(), "stock-market-101")
	if err != nil {
		t.Fatalf("FindCourse() error = %v", err)
	}
	if len(broken.Modules) != 1 || len(broken.Modules[0].FixedQnA) != 0 {
		t.Fatalf("expected malformed qna to be skipped, got %+v", broken.Modules)
	}
}

func TestIndexLookupErrors(t *testing.T) {
	idx, err := NewIndex([]domain.Course{{ID: "c1", Modules: []domain.Module{{ID: "m1"}}}, {ID: "empty"}})
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}

	if _, err := idx.FindCourse(context.Background(), "missing"); !domain.IsKind(err, domain.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
	course, _ := idx.FindCourse(context.Background(), "c1")
	if _, err := idx.FindModule(context.Background(), course, "m9"); !domain.IsKind(err, domain.ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
	empty, _ := idx.FindCourse(context.Background(), "empty")
	if _, err := idx.FindModule(context.Background(), empty, ""); !domain.IsKind(err, domain.ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound for course without modules, got %v", err)
	}
}

func TestNewIndexRejectsDuplicateIDs(t *testing.T) {
	_, err := NewIndex([]domain.Course{{ID: "c1"}, {ID: "c1"}})
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
}
