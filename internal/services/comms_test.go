package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	"github.com/yungbote/educator-assistant-backend/internal/data/repos/testutil"
	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/domain/comms"
)

func TestMessageSendChannels(t *testing.T) {
	h := newHarness(t)
	st := testutil.SeedStudent(t, h.ctx, h.db, h.educator.ID, nil, "Nicole", "Smith")

	inApp, err := h.messages.Send(h.ctx, SendMessageInput{StudentID: st.ID, Body: "Great work today"})
	require.NoError(t, err)
	assert.Equal(t, comms.ChannelInApp, inApp.Channel)
	assert.Equal(t, comms.StatusSent, inApp.Status)
	assert.Equal(t, "Message from your teacher", inApp.Subject)
	require.NotNil(t, inApp.SentAt)

	email, err := h.messages.Send(h.ctx, SendMessageInput{StudentID: st.ID, Subject: "Field trip", Body: "Bring a lunch", Channel: comms.ChannelEmail})
	require.NoError(t, err)
	assert.Equal(t, comms.StatusSent, email.Status)
	require.Equal(t, 1, h.mailer.count())
	assert.Equal(t, st.GuardianEmail, h.mailer.sent[0].To)
	assert.Equal(t, "Field trip", h.mailer.sent[0].Subject)

	h.mailer.failTo[st.GuardianEmail] = true
	failed, err := h.messages.Send(h.ctx, SendMessageInput{StudentID: st.ID, Body: "Retry me", Channel: comms.ChannelEmail})
	require.NoError(t, err)
	assert.Equal(t, comms.StatusFailed, failed.Status)
	assert.NotEmpty(t, failed.Error)
	assert.Nil(t, failed.SentAt)

	listed, err := h.messages.List(h.ctx, repos.MessageFilter{StudentID: &st.ID})
	require.NoError(t, err)
	assert.Len(t, listed, 3)

	notes, err := h.notifications.List(h.ctx, true)
	require.NoError(t, err)
	assert.Len(t, notes, 3)

	_, err = h.messages.Send(h.ctx, SendMessageInput{StudentID: uuid.New(), Body: "hello"})
	requireAPIError(t, err, http.StatusNotFound, "not_found")
}

func TestMessageEmailQueuedWithoutMailer(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ed := testutil.SeedEducator(t, context.Background(), db, "solo@school.test")
	ctx := asEducator(ed)
	st := testutil.SeedStudent(t, ctx, db, ed.ID, nil, "Marcus", "Lee")

	ms := NewMessageService(db, log, repos.NewMessageRepo(db, log), repos.NewStudentRepo(db, log),
		NewNotificationService(db, log, repos.NewNotificationRepo(db, log)), NewSendGridMailer(nil))

	msg, err := ms.Send(ctx, SendMessageInput{StudentID: st.ID, Body: "See you tomorrow", Channel: comms.ChannelEmail})
	require.NoError(t, err)
	assert.Equal(t, comms.StatusQueued, msg.Status)
	assert.Nil(t, msg.SentAt)
}

func TestSendBulkCountsOutcomes(t *testing.T) {
	h := newHarness(t)
	base := time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC)
	sec := testutil.SeedSection(t, h.ctx, h.db, h.educator.ID, "7B")
	a := testutil.SeedStudent(t, h.ctx, h.db, h.educator.ID, &sec.ID, "Nicole", "Smith")
	b := testutil.SeedStudent(t, h.ctx, h.db, h.educator.ID, &sec.ID, "Nicole", "Jones")
	c := testutil.SeedStudent(t, h.ctx, h.db, h.educator.ID, nil, "Marcus", "Lee")
	testutil.SeedGrade(t, h.ctx, h.db, c.ID, nil, "Quiz", 4, 10, base)
	testutil.SeedGrade(t, h.ctx, h.db, a.ID, nil, "Quiz", 9, 10, base)

	all, err := h.comms.SendBulk(h.ctx, BulkInput{Audience: comms.AudienceAll, Body: "School closes early Friday"})
	require.NoError(t, err)
	assert.Equal(t, 3, all.RecipientCount)
	assert.Equal(t, 3, all.SentCount)
	assert.Equal(t, 0, all.FailedCount)
	assert.Equal(t, comms.StatusSent, all.Status)

	msgs, err := h.messages.List(h.ctx, repos.MessageFilter{CommunicationID: &all.ID})
	require.NoError(t, err)
	assert.Len(t, msgs, 3)

	h.mailer.failTo[b.GuardianEmail] = true
	section, err := h.comms.SendBulk(h.ctx, BulkInput{
		Audience:  comms.AudienceSection,
		SectionID: &sec.ID,
		Subject:   "Permission slips",
		Body:      "Please sign and return",
		Channel:   comms.ChannelEmail,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, section.RecipientCount)
	assert.Equal(t, 1, section.SentCount)
	assert.Equal(t, 1, section.FailedCount)
	assert.Equal(t, comms.StatusPartial, section.Status)

	atRisk, err := h.comms.SendBulk(h.ctx, BulkInput{Audience: comms.AudienceAtRisk, Body: "Tutoring is available"})
	require.NoError(t, err)
	assert.Equal(t, 1, atRisk.RecipientCount)

	_, err = h.comms.SendBulk(h.ctx, BulkInput{Audience: comms.AudienceSection, Body: "missing section"})
	requireAPIError(t, err, http.StatusBadRequest, "section_required")

	_, err = h.comms.SendBulk(h.ctx, BulkInput{Audience: "everyone", Body: "x"})
	requireAPIError(t, err, http.StatusBadRequest, "validation_failed")

	history, err := h.comms.List(h.ctx)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestSendBulkEmptyAudienceFails(t *testing.T) {
	h := newHarness(t)
	comm, err := h.comms.SendBulk(h.ctx, BulkInput{Audience: comms.AudienceAll, Body: "Anyone there?"})
	require.NoError(t, err)
	assert.Equal(t, 0, comm.RecipientCount)
	assert.Equal(t, comms.StatusFailed, comm.Status)
}

func TestSendBulkRateLimited(t *testing.T) {
	h := newHarness(t)
	for _, n := range []string{"Ana", "Ben", "Cleo", "Dev"} {
		testutil.SeedStudent(t, h.ctx, h.db, h.educator.ID, nil, n, "Park")
	}
	log := testutil.Logger(t)
	newComms := func(cfg BulkConfig) CommunicationService {
		return NewCommunicationService(h.db, log, repos.NewCommunicationRepo(h.db, log), repos.NewStudentRepo(h.db, log),
			repos.NewSectionRepo(h.db, log), h.grades, h.messages, h.notifications, cfg)
	}

	t.Run("paced send completes", func(t *testing.T) {
		comm, err := newComms(BulkConfig{Concurrency: 2, RatePerSecond: 100}).
			SendBulk(h.ctx, BulkInput{Audience: comms.AudienceAll, Body: "Field trip forms due"})
		require.NoError(t, err)
		assert.Equal(t, 4, comm.SentCount)
		assert.Equal(t, comms.StatusSent, comm.Status)
	})

	t.Run("deadline stops the send", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(h.ctx, 500*time.Millisecond)
		defer cancel()
		comm, err := newComms(BulkConfig{Concurrency: 1, RatePerSecond: 1}).
			SendBulk(ctx, BulkInput{Audience: comms.AudienceAll, Body: "Picture day"})
		requireAPIError(t, err, http.StatusServiceUnavailable, "bulk_send_interrupted")
		require.NotNil(t, comm)
		assert.Equal(t, 4, comm.RecipientCount)
		assert.Equal(t, 1, comm.SentCount)
		assert.Equal(t, 3, comm.FailedCount)
		assert.Equal(t, comms.StatusPartial, comm.Status)

		history, err := h.comms.List(h.ctx)
		require.NoError(t, err)
		var stored *types.Communication
		for _, c := range history {
			if c.ID == comm.ID {
				stored = c
			}
		}
		require.NotNil(t, stored)
		assert.Equal(t, comms.StatusPartial, stored.Status)
		assert.Equal(t, 3, stored.FailedCount)
	})
}
