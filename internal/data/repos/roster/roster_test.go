package roster

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos/testutil"
	types "github.com/yungbote/educator-assistant-backend/internal/domain"
)

func TestStudentRepoScopesByEducator(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	students := NewStudentRepo(db, log)

	owner := testutil.SeedEducator(t, ctx, db, "owner@school.test")
	other := testutil.SeedEducator(t, ctx, db, "other@school.test")
	sec := testutil.SeedSection(t, ctx, db, owner.ID, "7B")

	created, err := students.Create(ctx, nil, []*types.Student{
		{EducatorID: owner.ID, SectionID: &sec.ID, FirstName: "Nicole", LastName: "Smith"},
		{EducatorID: owner.ID, FirstName: "Marcus", LastName: "Lee", Email: "marcus@example.com"},
		{EducatorID: other.ID, FirstName: "Nicole", LastName: "Jones"},
	})
	require.NoError(t, err)
	require.Len(t, created, 3)

	got, err := students.GetByID(ctx, nil, owner.ID, created[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Section)
	assert.Equal(t, "7B", got.Section.Name)

	foreign, err := students.GetByID(ctx, nil, owner.ID, created[2].ID)
	require.NoError(t, err)
	assert.Nil(t, foreign)

	all, err := students.List(ctx, nil, owner.ID, StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bySection, err := students.List(ctx, nil, owner.ID, StudentFilter{SectionID: &sec.ID})
	require.NoError(t, err)
	require.Len(t, bySection, 1)
	assert.Equal(t, "Nicole", bySection[0].FirstName)

	byQuery, err := students.List(ctx, nil, owner.ID, StudentFilter{Query: "marcus lee"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)

	ok, err := students.Delete(ctx, nil, other.ID, created[1].ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = students.Delete(ctx, nil, owner.ID, created[1].ID)
	require.NoError(t, err)
	assert.True(t, ok)
	gone, err := students.GetByID(ctx, nil, owner.ID, created[1].ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSectionRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewSectionRepo(db, testutil.Logger(t))
	ed := testutil.SeedEducator(t, ctx, db, "sec@school.test")

	s, err := repo.Create(ctx, nil, &types.Section{EducatorID: ed.ID, Name: "Period 3"})
	require.NoError(t, err)

	found, err := repo.FindByName(ctx, nil, ed.ID, "period 3")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, s.ID, found.ID)

	s.Name = "Period 4"
	require.NoError(t, repo.Update(ctx, nil, s))
	got, err := repo.GetByID(ctx, nil, ed.ID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Period 4", got.Name)

	none, err := repo.GetByID(ctx, nil, uuid.New(), s.ID)
	require.NoError(t, err)
	assert.Nil(t, none)
}
