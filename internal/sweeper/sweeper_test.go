package sweeper_test

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenziCode/genzi-rms-sub003/internal/clock"
	assignmentctl "github.com/GenziCode/genzi-rms-sub003/internal/db/controller/assignment"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/dbtest"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
	"github.com/GenziCode/genzi-rms-sub003/internal/sweeper"
)

func TestSweep(t *testing.T) {
	db := dbtest.Setup(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	clk := clock.NewFake(now)

	at := func(d time.Duration) *time.Time {
		t := now.Add(d)

		return &t
	}

	rows := []*models.RoleAssignment{
		{TenantID: "t1", UserID: "old", RoleID: "r1", ExpiresAt: at(-48 * time.Hour)},
		{TenantID: "t1", UserID: "recent", RoleID: "r1", ExpiresAt: at(-time.Hour)},
		{TenantID: "t1", UserID: "valid", RoleID: "r1", ExpiresAt: at(time.Hour)},
		{TenantID: "t1", UserID: "forever", RoleID: "r1"},
	}

	for _, a := range rows {
		a.AssignedAt = now.Add(-72 * time.Hour)
		a.IsActive = true
		require.NoError(t, assignmentctl.Save(db, a))
	}

	s := sweeper.New(db, clk, 24*time.Hour)

	n, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var left []models.RoleAssignment
	require.NoError(t, db.Order("user_id").Find(&left).Error)
	require.Len(t, left, 3)
	assert.Equal(t, "forever", left[0].UserID)

	clk.Advance(24 * time.Hour)

	n, err = s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSchedule(t *testing.T) {
	db := dbtest.Setup(t)
	s := sweeper.New(db, nil, time.Hour)
	c := cron.New()

	id, err := s.Schedule(c, "@hourly")
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Len(t, c.Entries(), 1)

	_, err = s.Schedule(c, "every now and then")
	require.Error(t, err)
}
