package static

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
)

// Load builds an Index from path, which is either a single JSON/YAML catalog
// file or a course_modules style directory tree.
func Load(path string) (*Index, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat content path: %w", err)
	}

	var courses []domain.Course
	if info.IsDir() {
		courses, err = loadFolder(path)
	} else {
		courses, err = loadCatalogFile(path)
	}
	if err != nil {
		return nil, err
	}

	idx, err := NewIndex(courses)
	if err != nil {
		return nil, fmt.Errorf("index content from %s: %w", path, err)
	}
	slog.Info("content_loaded", "path", path, "courses", len(courses))
	return idx, nil
}

// catalogFile covers the object shapes a catalog file may take.
type catalogFile struct {
	Courses []domain.Course `json:"courses" yaml:"courses"`
	Topics  []topicFile     `json:"topics" yaml:"topics"`
}

func loadCatalogFile(path string) ([]domain.Course, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("catalog file %s is empty", path)
	}

	if isYAML(path) {
		return decodeYAMLCatalog(raw)
	}
	return decodeJSONCatalog(raw)
}

func decodeJSONCatalog(raw []byte) ([]domain.Course, error) {
	if raw[0] == '[' {
		var courses []domain.Course
		if err := json.Unmarshal(raw, &courses); err != nil {
			return nil, fmt.Errorf("decode course list: %w", err)
		}
		return courses, nil
	}

	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode catalog object: %w", err)
	}
	return file.courses()
}

func decodeYAMLCatalog(raw []byte) ([]domain.Course, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("decode yaml catalog: %w", err)
	}
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		var courses []domain.Course
		if err := node.Decode(&courses); err != nil {
			return nil, fmt.Errorf("decode yaml course list: %w", err)
		}
		return courses, nil
	}

	var file catalogFile
	if err := node.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode yaml catalog object: %w", err)
	}
	return file.courses()
}

func (f catalogFile) courses() ([]domain.Course, error) {
	switch {
	case len(f.Courses) > 0:
		return f.Courses, nil
	case len(f.Topics) > 0:
		out := make([]domain.Course, 0, len(f.Topics))
		for _, topic := range f.Topics {
			out = append(out, topic.course())
		}
		return out, nil
	default:
		return nil, errors.New("catalog has neither courses nor topics")
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
