package static

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
)

const summaryFromAnswerChars = 200

// courseMeta is the optional course.yaml / course.json next to module folders.
type courseMeta struct {
	Title    string `json:"title" yaml:"title"`
	Overview string `json:"overview" yaml:"overview"`
	Source   string `json:"source" yaml:"source"`
	Level    string `json:"level" yaml:"level"`
}

// moduleMeta is the optional module.yaml / module.json inside a module folder.
type moduleMeta struct {
	Title      string `json:"title" yaml:"title"`
	Summary    string `json:"summary" yaml:"summary"`
	TheoryText string `json:"theory_text" yaml:"theory_text"`
}

type flashCard struct {
	Topic         string `json:"topic"`
	TheoryTitle   string `json:"theory_title"`
	TheoryContent string `json:"theory_content"`
}

// loadFolder reads <root>/<course>/<module>/{qna.json,flash_cards.json}.
// Directory names are the ids; both levels are ordered by name.
func loadFolder(root string) ([]domain.Course, error) {
	courseDirs, err := sortedSubdirs(root)
	if err != nil {
		return nil, fmt.Errorf("list course folders: %w", err)
	}

	courses := make([]domain.Course, 0, len(courseDirs))
	for _, courseID := range courseDirs {
		course, err := loadCourseFolder(filepath.Join(root, courseID), courseID)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, nil
}

func loadCourseFolder(dir, courseID string) (domain.Course, error) {
	var meta courseMeta
	if _, err := readMeta(dir, "course", &meta); err != nil {
		return domain.Course{}, err
	}

	course := domain.Course{
		ID:       courseID,
		Title:    meta.Title,
		Overview: meta.Overview,
		Source:   meta.Source,
		Level:    meta.Level,
	}
	if course.Title == "" {
		course.Title = titleFromID(courseID)
	}
	if course.Level == "" {
		course.Level = "Beginner"
	}

	moduleDirs, err := sortedSubdirs(dir)
	if err != nil {
		return domain.Course{}, fmt.Errorf("list module folders of %s: %w", courseID, err)
	}
	for _, moduleID := range moduleDirs {
		course.Modules = append(course.Modules, loadModuleFolder(filepath.Join(dir, moduleID), courseID, moduleID))
	}
	return course, nil
}

func loadModuleFolder(dir, courseID, moduleID string) domain.Module {
	module := domain.Module{
		ID:       moduleID,
		Title:    strings.ToUpper(strings.NewReplacer("-", " ", "_", " ").Replace(moduleID)),
		FixedQnA: []domain.QnaPair{},
	}

	var qna []domain.QnaPair
	if err := readJSONFile(filepath.Join(dir, "qna.json"), &qna); err != nil {
		slog.Warn("content_file_skipped", "course_id", courseID, "module_id", moduleID, "file", "qna.json", "error", err)
	}
	if len(qna) > 0 {
		module.FixedQnA = qna
		module.Summary = truncate(qna[0].Answer, summaryFromAnswerChars)
	}

	var cards []flashCard
	if err := readJSONFile(filepath.Join(dir, "flash_cards.json"), &cards); err != nil {
		slog.Warn("content_file_skipped", "course_id", courseID, "module_id", moduleID, "file", "flash_cards.json", "error", err)
	}
	if len(cards) > 0 {
		if title := firstNonEmpty(cards[0].TheoryTitle, cards[0].Topic); title != "" {
			module.Title = title
		}
		module.TheoryText = cards[0].TheoryContent
	}

	var meta moduleMeta
	found, err := readMeta(dir, "module", &meta)
	if err != nil {
		slog.Warn("content_file_skipped", "course_id", courseID, "module_id", moduleID, "file", "module meta", "error", err)
	}
	if found {
		module.Title = firstNonEmpty(meta.Title, module.Title)
		module.Summary = firstNonEmpty(meta.Summary, module.Summary)
		module.TheoryText = firstNonEmpty(meta.TheoryText, module.TheoryText)
	}
	return module
}

// readMeta decodes the first of <name>.yaml, <name>.yml, <name>.json found in dir.
func readMeta(dir, name string, out any) (bool, error) {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(dir, name+ext)
		raw, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("read %s: %w", path, err)
		}
		if ext == ".json" {
			err = json.Unmarshal(raw, out)
		} else {
			err = yaml.Unmarshal(raw, out)
		}
		if err != nil {
			return false, fmt.Errorf("decode %s: %w", path, err)
		}
		return true, nil
	}
	return false, nil
}

// readJSONFile leaves out untouched when the file does not exist.
func readJSONFile(path string, out any) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func sortedSubdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func titleFromID(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' })
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
