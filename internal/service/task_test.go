package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTask(t *testing.T) {
	for _, task := range Tasks() {
		got, err := ParseTask(task.String())
		require.NoError(t, err)
		assert.Equal(t, task, got)
	}

	got, err := ParseTask("Member-Profile")
	require.NoError(t, err)
	assert.Equal(t, TaskMemberProfile, got)

	_, err = ParseTask("leaderboard")
	assert.ErrorIs(t, err, ErrUnknownTask)
	assert.Equal(t, "unknown", TaskUnknown.String())
	assert.Len(t, Tasks(), 11)
}
