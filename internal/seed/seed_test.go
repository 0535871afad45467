package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos/testutil"
	types "github.com/yungbote/educator-assistant-backend/internal/domain"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Sections = 2
	opts.StudentsPerSection = 5
	opts.GradesPerStudent = 4
	opts.Now = func() time.Time { return time.Date(2030, 3, 6, 10, 0, 0, 0, time.UTC) }
	return opts
}

func TestRunSeedsClassroom(t *testing.T) {
	db := testutil.DB(t)
	s := New(db, testutil.Logger(t))

	sum, err := s.Run(context.Background(), testOptions())
	require.NoError(t, err)
	assert.False(t, sum.Skipped)
	assert.Equal(t, 2, sum.Sections)
	assert.Equal(t, 4, sum.Subjects)
	assert.Equal(t, 10, sum.Students)
	assert.Equal(t, 40, sum.Grades)
	assert.Equal(t, 8, sum.Schedules)

	var nicoles int64
	require.NoError(t, db.Model(&types.Student{}).Where("first_name = ?", "Nicole").Count(&nicoles).Error)
	assert.GreaterOrEqual(t, nicoles, int64(2))

	var sections []types.Section
	require.NoError(t, db.Order("name").Find(&sections).Error)
	assert.Equal(t, "5A", sections[0].Name)
	assert.Equal(t, "5B", sections[1].Name)
	assert.Equal(t, "2029-2030", sections[0].AcademicYear)

	var grades []types.Grade
	require.NoError(t, db.Find(&grades).Error)
	for _, g := range grades {
		assert.GreaterOrEqual(t, g.Score, 0.0)
		assert.LessOrEqual(t, g.Score, g.MaxScore)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	s := New(db, testutil.Logger(t))

	first, err := s.Run(context.Background(), testOptions())
	require.NoError(t, err)
	second, err := s.Run(context.Background(), testOptions())
	require.NoError(t, err)

	assert.True(t, second.Skipped)
	assert.Equal(t, first.EducatorID, second.EducatorID)
	var students int64
	require.NoError(t, db.Model(&types.Student{}).Count(&students).Error)
	assert.Equal(t, int64(10), students)
}

func TestRunRejectsBadOptions(t *testing.T) {
	s := New(testutil.DB(t), testutil.Logger(t))
	opts := testOptions()
	opts.Sections = 0
	_, err := s.Run(context.Background(), opts)
	assert.Error(t, err)

	opts = testOptions()
	opts.StudentsPerSection = 1000
	_, err = s.Run(context.Background(), opts)
	assert.Error(t, err)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC), mondayOf(time.Date(2030, 3, 6, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC), mondayOf(time.Date(2030, 3, 10, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2030-2031", academicYear(time.Date(2030, 9, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "nicole.smith@parents.springfieldhigh.example.org", emailFor("Nicole", "Smith", "parents."+domainFor("Springfield High")))
}
