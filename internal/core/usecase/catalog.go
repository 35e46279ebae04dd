package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
	"github.com/wealthplay/nex-mentor/internal/core/ports"
)

type CatalogUseCase struct {
	content ports.ContentProvider
}

func NewCatalogUseCase(content ports.ContentProvider) *CatalogUseCase {
	return &CatalogUseCase{content: content}
}

func (uc *CatalogUseCase) ListCourses(ctx context.Context) ([]domain.CourseSummary, error) {
	return uc.content.ListCourses(ctx)
}

func (uc *CatalogUseCase) GetCourse(ctx context.Context, courseID string) (*domain.Course, error) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get course", errors.New("course id is required"))
	}
	return uc.content.FindCourse(ctx, courseID)
}
