// AngelaMos | 2026
// service_test.go

package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfmode/selfmode-api/internal/core"
	"github.com/selfmode/selfmode-api/internal/user"
)

var errBoom = errors.New("boom")

type fakeRepo struct {
	packages []Package
	byID     *Package
	err      error

	gotAgeGroup user.AgeGroup
}

func (f *fakeRepo) ListActive(_ context.Context) ([]Package, error) {
	return f.packages, f.err
}

func (f *fakeRepo) ListByAgeGroup(
	_ context.Context,
	ageGroup user.AgeGroup,
) ([]Package, error) {
	f.gotAgeGroup = ageGroup
	return f.packages, f.err
}

func (f *fakeRepo) GetByID(_ context.Context, _ string) (*Package, error) {
	return f.byID, f.err
}

func TestListPackagesForAgeGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown age group", func(t *testing.T) {
		svc := NewService(&fakeRepo{})

		_, err := svc.ListPackagesForAgeGroup(ctx, user.AgeGroup("TODDLER"))
		assert.ErrorIs(t, err, core.ErrInvalidInput)

		_, err = svc.ListPackagesForAgeGroup(ctx, "")
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("valid groups pass through", func(t *testing.T) {
		repo := &fakeRepo{packages: []Package{{ID: "pkg-1"}}}
		svc := NewService(repo)

		for _, group := range []user.AgeGroup{
			user.AgeGroupMiddle,
			user.AgeGroupHigh,
			user.AgeGroupPro,
		} {
			packages, err := svc.ListPackagesForAgeGroup(ctx, group)
			require.NoError(t, err)
			assert.Len(t, packages, 1)
			assert.Equal(t, group, repo.gotAgeGroup)
		}
	})

	t.Run("repository error surfaces", func(t *testing.T) {
		svc := NewService(&fakeRepo{err: errBoom})

		_, err := svc.ListPackagesForAgeGroup(ctx, user.AgeGroupHigh)
		assert.ErrorIs(t, err, errBoom)
	})
}

func TestGetPackage(t *testing.T) {
	ctx := context.Background()

	t.Run("empty id", func(t *testing.T) {
		svc := NewService(&fakeRepo{})

		_, err := svc.GetPackage(ctx, "")
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("found", func(t *testing.T) {
		svc := NewService(&fakeRepo{byID: &Package{ID: "pkg-1"}})

		pkg, err := svc.GetPackage(ctx, "pkg-1")
		require.NoError(t, err)
		assert.Equal(t, "pkg-1", pkg.ID)
	})
}

func TestFeatureListScan(t *testing.T) {
	var features FeatureList

	require.NoError(t, features.Scan([]byte(`["reports","coaching"]`)))
	assert.Equal(t, FeatureList{"reports", "coaching"}, features)

	require.NoError(t, features.Scan(`["single"]`))
	assert.Equal(t, FeatureList{"single"}, features)

	require.NoError(t, features.Scan(nil))
	assert.Nil(t, features)

	assert.Error(t, features.Scan(42))

	value, err := FeatureList{"a", "b"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(value.([]byte)))
}
