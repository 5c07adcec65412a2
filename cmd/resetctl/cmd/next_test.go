package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		jsonOut = false
		_ = nextCmd.Flags().Set("now", "")
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestNextCommand(t *testing.T) {
	out, err := execute(t, "next", "--registered", "2024-01-01T00:00:00Z", "--now", "2024-01-07T12:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-01-08T00:00:00Z")
	assert.Contains(t, out, "Days until:")
}

func TestNextCommand_JSON(t *testing.T) {
	out, err := execute(t, "next", "--json", "--registered", "2024-01-01T00:00:00Z", "--now", "2024-01-08T00:00:01Z")
	require.NoError(t, err)

	var got struct {
		NextResetDate  string `json:"next_reset_date"`
		DaysUntilReset int    `json:"days_until_reset"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "2024-01-15T00:00:00Z", got.NextResetDate)
	assert.Equal(t, 7, got.DaysUntilReset)
}

func TestNextCommand_BadInput(t *testing.T) {
	_, err := execute(t, "next", "--registered", "yesterday")
	assert.Error(t, err)
}
