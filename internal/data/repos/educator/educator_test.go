package educator

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos/testutil"
	types "github.com/yungbote/educator-assistant-backend/internal/domain"
)

func TestEducatorRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewEducatorRepo(db, testutil.Logger(t))

	e, err := repo.Create(ctx, nil, &types.Educator{
		Email:     "  Ms.Frizzle@School.test ",
		Password:  "hash",
		FirstName: "Valerie",
		LastName:  "Frizzle",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, "ms.frizzle@school.test", e.Email)
	assert.Equal(t, "assist", e.AssistantMode)

	got, err := repo.GetByEmail(ctx, nil, "MS.FRIZZLE@school.test")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, e.ID, got.ID)

	exists, err := repo.EmailExists(ctx, nil, "ms.frizzle@school.test")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.UpdateAssistantMode(ctx, nil, e.ID, "autonomous"))
	got, err = repo.GetByID(ctx, nil, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "autonomous", got.AssistantMode)

	missing, err := repo.GetByID(ctx, nil, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
