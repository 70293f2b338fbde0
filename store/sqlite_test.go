package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("alice", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	byName, err := s.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byID, err := s.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	assert.True(t, s.ValidatePassword(byName, "hunter22"))
	assert.False(t, s.ValidatePassword(byName, "wrong"))

	_, err = s.GetUserByUsername("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTaskDefaults(t *testing.T) {
	s := newTestStore(t)
	user, err := s.CreateUser("alice", "hunter22")
	require.NoError(t, err)

	task, err := s.CreateTask(user.ID, "Pay rent", "", nil, "")
	require.NoError(t, err)
	assert.False(t, task.Completed)
	assert.Equal(t, "personal", task.Category)
	assert.Nil(t, task.DueDate)

	due := time.Now().Add(20 * time.Minute).UTC().Truncate(time.Second)
	task, err = s.CreateTask(user.ID, "Standup", "daily sync", &due, "work")
	require.NoError(t, err)
	assert.Equal(t, "work", task.Category)

	tasks, err := s.GetTasksForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.NotNil(t, tasks[1].DueDate)
	assert.True(t, tasks[1].DueDate.Equal(due))
	assert.Equal(t, "daily sync", tasks[1].Description)
}

func TestGetTasksScopedByOwner(t *testing.T) {
	s := newTestStore(t)
	alice, err := s.CreateUser("alice", "hunter22")
	require.NoError(t, err)
	bob, err := s.CreateUser("bob", "hunter22")
	require.NoError(t, err)

	_, err = s.CreateTask(alice.ID, "Alice task", "", nil, "")
	require.NoError(t, err)
	_, err = s.CreateTask(bob.ID, "Bob task", "", nil, "")
	require.NoError(t, err)

	aliceTasks, err := s.GetTasksForUser(alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceTasks, 1)
	assert.Equal(t, "Alice task", aliceTasks[0].Title)

	all, err := s.GetAllTasks()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCompleteTask(t *testing.T) {
	s := newTestStore(t)
	alice, err := s.CreateUser("alice", "hunter22")
	require.NoError(t, err)
	bob, err := s.CreateUser("bob", "hunter22")
	require.NoError(t, err)

	task, err := s.CreateTask(alice.ID, "Pay rent", "", nil, "")
	require.NoError(t, err)

	completed, err := s.CompleteTask(alice.ID, task.ID)
	require.NoError(t, err)
	assert.True(t, completed.Completed)

	// One-way: completing again stays completed
	again, err := s.CompleteTask(alice.ID, task.ID)
	require.NoError(t, err)
	assert.True(t, again.Completed)

	// Foreign-owned and missing ids look the same to the caller
	_, err = s.CompleteTask(bob.ID, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.CompleteTask(alice.ID, "no-such-task")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventRoundTrip(t *testing.T) {
	s := newTestStore(t)
	user, err := s.CreateUser("alice", "hunter22")
	require.NoError(t, err)

	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	created, err := s.CreateEvent(user.ID, "Team sync", "weekly", start, end, "every monday")
	require.NoError(t, err)

	events, err := s.GetEventsForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Team sync", got.Title)
	assert.Equal(t, "weekly", got.Description)
	assert.True(t, got.StartDate.Equal(start))
	assert.True(t, got.EndDate.Equal(end))
	assert.Equal(t, "every monday", got.Recurrence)

	other, err := s.GetEventsForUser("someone-else")
	require.NoError(t, err)
	assert.Empty(t, other)
}
