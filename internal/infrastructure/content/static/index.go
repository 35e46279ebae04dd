package static

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
)

// Index is an immutable, in-memory course catalog built once at startup.
type Index struct {
	courses []domain.Course
	byID    map[string]int
}

func NewIndex(courses []domain.Course) (*Index, error) {
	idx := &Index{
		courses: make([]domain.Course, 0, len(courses)),
		byID:    make(map[string]int, len(courses)),
	}
	for _, course := range courses {
		id := strings.TrimSpace(course.ID)
		if id == "" {
			return nil, errors.New("course without id")
		}
		if _, dup := idx.byID[id]; dup {
			return nil, fmt.Errorf("duplicate course id %q", id)
		}
		course.ID = id
		course.Modules = cloneModules(course.Modules)
		idx.byID[id] = len(idx.courses)
		idx.courses = append(idx.courses, course)
	}
	return idx, nil
}

func (i *Index) FindCourse(_ context.Context, courseID string) (*domain.Course, error) {
	pos, ok := i.byID[strings.TrimSpace(courseID)]
	if !ok {
		return nil, domain.WrapError(domain.ErrCourseNotFound, "find course", fmt.Errorf("id=%s", courseID))
	}
	course := i.courses[pos]
	return &course, nil
}

func (i *Index) FindModule(_ context.Context, course *domain.Course, moduleID string) (*domain.Module, error) {
	if course == nil || len(course.Modules) == 0 {
		return nil, domain.WrapError(domain.ErrModuleNotFound, "find module", errors.New("course has no modules"))
	}
	moduleID = strings.TrimSpace(moduleID)
	if moduleID == "" {
		module := course.Modules[0]
		return &module, nil
	}
	for _, module := range course.Modules {
		if module.ID == moduleID {
			return &module, nil
		}
	}
	return nil, domain.WrapError(domain.ErrModuleNotFound, "find module", fmt.Errorf("course=%s module=%s", course.ID, moduleID))
}

func (i *Index) ListCourses(context.Context) ([]domain.CourseSummary, error) {
	out := make([]domain.CourseSummary, 0, len(i.courses))
	for _, course := range i.courses {
		out = append(out, course.Summary())
	}
	return out, nil
}

// Courses returns a copy of every indexed course, modules included.
func (i *Index) Courses() []domain.Course {
	out := make([]domain.Course, 0, len(i.courses))
	for _, course := range i.courses {
		course.Modules = cloneModules(course.Modules)
		out = append(out, course)
	}
	return out
}

func cloneModules(modules []domain.Module) []domain.Module {
	out := make([]domain.Module, len(modules))
	for idx, module := range modules {
		module.FixedQnA = append([]domain.QnaPair(nil), module.FixedQnA...)
		out[idx] = module
	}
	return out
}
