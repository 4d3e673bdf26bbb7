package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/hwnotify/pkg/models"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	require.NoError(t, Connect("", ":memory:"))
	t.Cleanup(func() { _ = Close() })
}

func seedUser(t *testing.T, u *models.UserAccount) {
	t.Helper()
	require.NoError(t, NewUserRepository().Upsert(u))
}

func TestUserRepository_UpsertAndGet(t *testing.T) {
	setupTestDB(t)
	repo := NewUserRepository()

	u := &models.UserAccount{
		ID:                   "u1",
		DisplayName:          "Ana",
		SetupComplete:        true,
		NotificationsEnabled: true,
		PushTokens:           []string{"A", "B"},
	}
	u.Notifications.Primary = "19:00"
	u.Notifications.Weekend = "10:30"
	seedUser(t, u)

	got, err := repo.GetByID("u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.DisplayName)
	assert.True(t, got.SetupComplete)
	assert.Equal(t, "19:00", got.Notifications.Primary)
	assert.Equal(t, "10:30", got.Notifications.Weekend)
	assert.Equal(t, []string{"A", "B"}, got.PushTokens)

	// Upsert updates in place.
	u.DisplayName = "Ana M."
	u.Notifications.Primary = "20:15"
	seedUser(t, u)

	got, err = repo.GetByID("u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana M.", got.DisplayName)
	assert.Equal(t, "20:15", got.Notifications.Primary)
}

func TestUserRepository_UsersBySlot(t *testing.T) {
	setupTestDB(t)
	repo := NewUserRepository()

	match := &models.UserAccount{ID: "match", NotificationsEnabled: true}
	match.Notifications.Primary = "08:05"
	seedUser(t, match)

	otherTime := &models.UserAccount{ID: "other-time", NotificationsEnabled: true}
	otherTime.Notifications.Primary = "08:06"
	seedUser(t, otherTime)

	disabled := &models.UserAccount{ID: "disabled", NotificationsEnabled: false}
	disabled.Notifications.Primary = "08:05"
	seedUser(t, disabled)

	otherSlot := &models.UserAccount{ID: "other-slot", NotificationsEnabled: true}
	otherSlot.Notifications.Secondary = "08:05"
	seedUser(t, otherSlot)

	users, err := repo.UsersBySlot(models.SlotPrimary, "08:05")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "match", users[0].ID)

	users, err = repo.UsersBySlot(models.SlotSecondary, "08:05")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "other-slot", users[0].ID)

	_, err = repo.UsersBySlot(models.Slot("bogus"), "08:05")
	assert.Error(t, err)
}

func TestUserRepository_UpdatePushTokens(t *testing.T) {
	setupTestDB(t)
	repo := NewUserRepository()

	u := &models.UserAccount{ID: "u1", NotificationsEnabled: true, PushTokens: []string{"A", "B", "C"}}
	seedUser(t, u)

	require.NoError(t, repo.UpdatePushTokens("u1", []string{"A", "C"}))

	got, err := repo.GetByID("u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, got.PushTokens)

	// Narrowing to empty persists an empty list, not null.
	require.NoError(t, repo.UpdatePushTokens("u1", []string{}))
	got, err = repo.GetByID("u1")
	require.NoError(t, err)
	assert.Empty(t, got.PushTokens)
}

func TestTaskRepository_IncompleteByUser(t *testing.T) {
	setupTestDB(t)
	seedUser(t, &models.UserAccount{ID: "u1"})
	seedUser(t, &models.UserAccount{ID: "u2"})
	repo := NewTaskRepository()

	due := time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(&models.HomeworkTask{ID: "t1", UserID: "u1", Subject: "Math", DueAt: due}))
	require.NoError(t, repo.Create(&models.HomeworkTask{ID: "t2", UserID: "u1", Subject: "History", DueAt: due}))
	require.NoError(t, repo.Create(&models.HomeworkTask{ID: "t3", UserID: "u2", Subject: "Math", DueAt: due}))

	require.NoError(t, repo.SetCompleted("u1", "t2", true))

	tasks, err := repo.IncompleteByUser("u1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t1", tasks[0].ID)
	assert.Equal(t, "Math", tasks[0].Subject)
}

func TestTaskRepository_IncompleteDueBefore(t *testing.T) {
	setupTestDB(t)
	seedUser(t, &models.UserAccount{ID: "u1"})
	repo := NewTaskRepository()

	now := time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(&models.HomeworkTask{ID: "soon", UserID: "u1", Subject: "Math", DueAt: now.Add(24 * time.Hour)}))
	require.NoError(t, repo.Create(&models.HomeworkTask{ID: "later", UserID: "u1", Subject: "History", DueAt: now.Add(96 * time.Hour)}))

	tasks, err := repo.IncompleteDueBefore("u1", now.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "soon", tasks[0].ID)
}

func TestTaskRepository_Delete(t *testing.T) {
	setupTestDB(t)
	seedUser(t, &models.UserAccount{ID: "u1"})
	repo := NewTaskRepository()

	require.NoError(t, repo.Create(&models.HomeworkTask{ID: "t1", UserID: "u1", Subject: "Math"}))
	require.NoError(t, repo.Delete("u1", "t1"))

	tasks, err := repo.IncompleteByUser("u1")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
