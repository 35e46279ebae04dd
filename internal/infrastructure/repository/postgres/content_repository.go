package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
)

// ContentRepository serves course content from Postgres. FindCourse returns
// the same shape as the static index: every module with its fixed Q&A.
type ContentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) FindCourse(ctx context.Context, courseID string) (*domain.Course, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, overview, source, level
FROM courses
WHERE id = $1
`, courseID)

	var course domain.Course
	if err := row.Scan(&course.ID, &course.Title, &course.Overview, &course.Source, &course.Level); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrCourseNotFound, "find course", fmt.Errorf("id=%s", courseID))
		}
		return nil, fmt.Errorf("scan course: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, summary, theory_text
FROM course_modules
WHERE course_id = $1
ORDER BY position ASC, id ASC
`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list course modules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		module := domain.Module{FixedQnA: []domain.QnaPair{}}
		if err := rows.Scan(&module.ID, &module.Title, &module.Summary, &module.TheoryText); err != nil {
			return nil, fmt.Errorf("scan course module: %w", err)
		}
		course.Modules = append(course.Modules, module)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate course modules: %w", err)
	}
	if len(course.Modules) == 0 {
		return &course, nil
	}

	byModule, err := r.listCourseQnA(ctx, courseID)
	if err != nil {
		return nil, err
	}
	for i := range course.Modules {
		if pairs, ok := byModule[course.Modules[i].ID]; ok {
			course.Modules[i].FixedQnA = pairs
		}
	}
	return &course, nil
}

func (r *ContentRepository) listCourseQnA(ctx context.Context, courseID string) (map[string][]domain.QnaPair, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT module_id, question, answer
FROM module_qna
WHERE course_id = $1
ORDER BY module_id ASC, position ASC
`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list course qna: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.QnaPair)
	for rows.Next() {
		var moduleID string
		var pair domain.QnaPair
		if err := rows.Scan(&moduleID, &pair.Question, &pair.Answer); err != nil {
			return nil, fmt.Errorf("scan course qna: %w", err)
		}
		out[moduleID] = append(out[moduleID], pair)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate course qna: %w", err)
	}
	return out, nil
}

func (r *ContentRepository) FindModule(ctx context.Context, course *domain.Course, moduleID string) (*domain.Module, error) {
	if course == nil || len(course.Modules) == 0 {
		return nil, domain.WrapError(domain.ErrModuleNotFound, "find module", errors.New("course has no modules"))
	}

	var module domain.Module
	moduleID = strings.TrimSpace(moduleID)
	if moduleID == "" {
		module = course.Modules[0]
	} else {
		found := false
		for _, m := range course.Modules {
			if m.ID == moduleID {
				module, found = m, true
				break
			}
		}
		if !found {
			return nil, domain.WrapError(domain.ErrModuleNotFound, "find module", fmt.Errorf("course=%s module=%s", course.ID, moduleID))
		}
	}

	// Courses from FindCourse already carry their Q&A.
	if module.FixedQnA != nil {
		module.FixedQnA = append([]domain.QnaPair{}, module.FixedQnA...)
		return &module, nil
	}
	pairs, err := r.listQnA(ctx, course.ID, module.ID)
	if err != nil {
		return nil, err
	}
	module.FixedQnA = pairs
	return &module, nil
}

func (r *ContentRepository) listQnA(ctx context.Context, courseID, moduleID string) ([]domain.QnaPair, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT question, answer
FROM module_qna
WHERE course_id = $1 AND module_id = $2
ORDER BY position ASC
`, courseID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("list module qna: %w", err)
	}
	defer rows.Close()

	out := make([]domain.QnaPair, 0)
	for rows.Next() {
		var pair domain.QnaPair
		if err := rows.Scan(&pair.Question, &pair.Answer); err != nil {
			return nil, fmt.Errorf("scan module qna: %w", err)
		}
		out = append(out, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate module qna: %w", err)
	}
	return out, nil
}

func (r *ContentRepository) ListCourses(ctx context.Context) ([]domain.CourseSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.id, c.title, c.overview, c.source, c.level, COUNT(m.id)
FROM courses c
LEFT JOIN course_modules m ON m.course_id = c.id
GROUP BY c.id, c.title, c.overview, c.source, c.level, c.position
ORDER BY c.position ASC, c.id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CourseSummary, 0)
	for rows.Next() {
		var summary domain.CourseSummary
		if err := rows.Scan(&summary.ID, &summary.Title, &summary.Overview, &summary.Source, &summary.Level, &summary.ModuleCount); err != nil {
			return nil, fmt.Errorf("scan course summary: %w", err)
		}
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}
	return out, nil
}

// ImportCourses replaces the stored content of every given course in one
// transaction. Courses not in the input are left untouched.
func (r *ContentRepository) ImportCourses(ctx context.Context, courses []domain.Course) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for coursePos, course := range courses {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO courses (id, title, overview, source, level, position)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE
SET title = EXCLUDED.title, overview = EXCLUDED.overview, source = EXCLUDED.source,
	level = EXCLUDED.level, position = EXCLUDED.position
`, course.ID, course.Title, course.Overview, course.Source, course.Level, coursePos); err != nil {
			return fmt.Errorf("upsert course %s: %w", course.ID, err)
		}

		// Cascades to module_qna.
		if _, err := tx.ExecContext(ctx, `DELETE FROM course_modules WHERE course_id = $1`, course.ID); err != nil {
			return fmt.Errorf("clear modules of %s: %w", course.ID, err)
		}

		for modulePos, module := range course.Modules {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO course_modules (course_id, id, title, summary, theory_text, position)
VALUES ($1,$2,$3,$4,$5,$6)
`, course.ID, module.ID, module.Title, module.Summary, module.TheoryText, modulePos); err != nil {
				return fmt.Errorf("insert module %s/%s: %w", course.ID, module.ID, err)
			}
			for qnaPos, pair := range module.FixedQnA {
				if _, err := tx.ExecContext(ctx, `
INSERT INTO module_qna (course_id, module_id, position, question, answer)
VALUES ($1,$2,$3,$4,$5)
`, course.ID, module.ID, qnaPos, pair.Question, pair.Answer); err != nil {
					return fmt.Errorf("insert qna %s/%s#%d: %w", course.ID, module.ID, qnaPos, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import tx: %w", err)
	}
	return nil
}
