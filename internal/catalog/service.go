// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"fmt"

	"github.com/selfmode/selfmode-api/internal/core"
	"github.com/selfmode/selfmode-api/internal/user"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListPackages(ctx context.Context) ([]Package, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) ListPackagesForAgeGroup(
	ctx context.Context,
	ageGroup user.AgeGroup,
) ([]Package, error) {
	switch ageGroup {
	case user.AgeGroupMiddle, user.AgeGroupHigh, user.AgeGroupPro:
	default:
		return nil, fmt.Errorf(
			"list packages: unknown age group %q: %w",
			ageGroup,
			core.ErrInvalidInput,
		)
	}

	return s.repo.ListByAgeGroup(ctx, ageGroup)
}

func (s *Service) GetPackage(ctx context.Context, id string) (*Package, error) {
	if id == "" {
		return nil, fmt.Errorf("get package: %w", core.ErrInvalidInput)
	}

	return s.repo.GetByID(ctx, id)
}
