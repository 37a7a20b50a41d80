package college_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/recomendo/core/college"
	"github.com/trezcool/recomendo/tests"
)

func TestService_FindOrCreate(t *testing.T) {
	env := testutil.NewEnv()
	ctx := context.Background()

	c, err := env.CollegeSvc.FindOrCreate(ctx, college.NewCollege{Name: "  Test Tech ", Type: college.TypeTechnical, Values: []string{" Innovation ", ""}})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Test Tech", c.Name)
	assert.Equal(t, college.TypeTechnical, c.Type)
	assert.Equal(t, []string{"Innovation"}, c.Values)

	// found by name, case-insensitively; other fields are ignored
	found, err := env.CollegeSvc.FindOrCreate(ctx, college.NewCollege{Name: "TEST TECH", Type: college.TypeBusiness})
	require.NoError(t, err)
	assert.Equal(t, c.ID, found.ID)
	assert.Equal(t, college.TypeTechnical, found.Type)

	// type defaults to other
	other, err := env.CollegeSvc.FindOrCreate(ctx, college.NewCollege{Name: "Somewhere College"})
	require.NoError(t, err)
	assert.Equal(t, college.TypeOther, other.Type)

	all, err := env.CollegeSvc.Query(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestService_Get(t *testing.T) {
	env := testutil.NewEnv()

	_, err := env.CollegeSvc.Get(context.Background(), "unknown")
	assert.Equal(t, college.ErrNotFound, err)
}

func TestService_Seed(t *testing.T) {
	env := testutil.NewEnv()
	ctx := context.Background()

	// an existing catalog college is not duplicated
	_, err := env.CollegeSvc.FindOrCreate(ctx, college.NewCollege{Name: college.Catalog[0].Name})
	require.NoError(t, err)

	created, err := env.CollegeSvc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(college.Catalog)-1, created)

	created, err = env.CollegeSvc.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestNameKey(t *testing.T) {
	assert.Equal(t, "mit", college.NameKey("  MIT "))
	assert.Equal(t, college.NameKey("Stanford University"), college.NameKey("stanford university"))
}
