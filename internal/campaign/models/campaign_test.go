package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
)

func TestStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusDraft, StatusActive, true},
		{StatusActive, StatusCompleted, true},
		{StatusActive, StatusSuspended, true},
		{StatusDraft, StatusSuspended, true},
		{StatusCompleted, StatusSuspended, true},
		{StatusSuspended, StatusActive, true},
		{StatusCompleted, StatusActive, false},
		{StatusDraft, StatusCompleted, false},
		{StatusSuspended, StatusCompleted, false},
		{StatusActive, StatusActive, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestApplyStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("legal transition updates status and timestamp", func(t *testing.T) {
		c := &Campaign{Status: StatusActive}
		require.NoError(t, c.ApplyStatus(StatusCompleted, now))
		assert.Equal(t, StatusCompleted, c.Status)
		assert.Equal(t, now, c.UpdatedAt)
	})

	t.Run("completed campaign cannot reactivate", func(t *testing.T) {
		c := &Campaign{Status: StatusCompleted}
		err := c.ApplyStatus(StatusActive, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		assert.Equal(t, StatusCompleted, c.Status)
	})

	t.Run("unknown status is bad request", func(t *testing.T) {
		c := &Campaign{Status: StatusActive}
		err := c.ApplyStatus(Status("ARCHIVED"), now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestCampaignGuards(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := &Campaign{Status: StatusActive, EndDate: now.Add(24 * time.Hour)}
	assert.True(t, c.AcceptsDonations())
	assert.True(t, c.OpenForIntents(now))
	assert.True(t, c.AllowsWithdrawal())

	c.EndDate = now.Add(-time.Hour)
	assert.False(t, c.OpenForIntents(now), "past end date rejects new intents")
	assert.True(t, c.AcceptsDonations(), "in-flight confirmations still land")

	c.Status = StatusCompleted
	assert.False(t, c.AcceptsDonations())
	assert.True(t, c.AllowsWithdrawal())

	c.Status = StatusSuspended
	assert.False(t, c.AcceptsDonations())
	assert.False(t, c.AllowsWithdrawal())

	c.Status = StatusDraft
	assert.False(t, c.AllowsWithdrawal())
}

func TestCreateRequestValidate(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	valid := func() CreateRequest {
		return CreateRequest{
			Title:        "Flood relief",
			Description:  "Help rebuild after the flood",
			Category:     "disaster",
			TargetAmount: 10_000_000,
			StartDate:    now,
			EndDate:      now.AddDate(0, 1, 0),
			Status:       StatusActive,
		}
	}

	t.Run("valid request passes", func(t *testing.T) {
		req := valid()
		req.Normalize()
		assert.NoError(t, req.Validate())
	})

	t.Run("whitespace title rejected after normalize", func(t *testing.T) {
		req := valid()
		req.Title = "   "
		req.Normalize()
		err := req.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("non-positive target rejected", func(t *testing.T) {
		req := valid()
		req.TargetAmount = 0
		req.Normalize()
		assert.Error(t, req.Validate())
	})

	t.Run("end before start rejected", func(t *testing.T) {
		req := valid()
		req.EndDate = req.StartDate.AddDate(0, 0, -1)
		req.Normalize()
		assert.Error(t, req.Validate())
	})

	t.Run("initial status must be draft or active", func(t *testing.T) {
		req := valid()
		req.Status = StatusSuspended
		req.Normalize()
		assert.Error(t, req.Validate())
	})

	t.Run("empty status defaults to draft", func(t *testing.T) {
		req := valid()
		req.Status = ""
		req.Normalize()
		require.NoError(t, req.Validate())
		c := New(id.NewCampaignID(), id.NewUserID(), req, now)
		assert.Equal(t, StatusDraft, c.Status)
	})
}
