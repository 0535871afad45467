package comms

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos/testutil"
	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/domain/comms"
)

func TestMessageRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewMessageRepo(db, testutil.Logger(t))
	ed := testutil.SeedEducator(t, ctx, db, "msg@school.test")
	st := testutil.SeedStudent(t, ctx, db, ed.ID, nil, "Nicole", "Smith")

	msgs, err := repo.Create(ctx, nil, []*types.Message{{
		EducatorID: ed.ID,
		StudentID:  st.ID,
		Body:       "Great work today",
		Status:     comms.StatusQueued,
	}})
	require.NoError(t, err)
	m := msgs[0]
	assert.Equal(t, comms.ChannelInApp, m.Channel)

	now := time.Now().UTC()
	require.NoError(t, repo.UpdateDelivery(ctx, nil, m.ID, comms.StatusSent, "", &now))
	got, err := repo.GetByID(ctx, nil, ed.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, comms.StatusSent, got.Status)
	require.NotNil(t, got.SentAt)

	ok, err := repo.MarkRead(ctx, nil, uuid.New(), m.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.MarkRead(ctx, nil, ed.ID, m.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)

	rows, err := repo.List(ctx, nil, ed.ID, MessageFilter{StudentID: &st.ID})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestNotificationRepoUnreadFilter(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewNotificationRepo(db, testutil.Logger(t))
	ed := testutil.SeedEducator(t, ctx, db, "notif@school.test")

	a, err := repo.Create(ctx, nil, &types.Notification{EducatorID: ed.ID, Kind: comms.NotificationMessageSent, Title: "a"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, nil, &types.Notification{EducatorID: ed.ID, Kind: comms.NotificationMessageSent, Title: "b"})
	require.NoError(t, err)

	_, err = repo.MarkRead(ctx, nil, ed.ID, a.ID, time.Now())
	require.NoError(t, err)

	unread, err := repo.List(ctx, nil, ed.ID, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "b", unread[0].Title)

	all, err := repo.List(ctx, nil, ed.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
