package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	line := FormatLine(RegistryEvent{
		Type:       StayOpened,
		GuestID:    "g-1",
		GuestName:  "Ana Souza",
		StayID:     "s-2",
		StayStatus: "active",
		CheckIn:    "2024-02-01",
		CheckOut:   "2024-02-05",
		Superseded: []string{"s-1"},
		OccurredAt: "2024-02-01T10:00:00Z",
	})
	assert.Equal(t,
		`[2024-02-01T10:00:00Z] stay.opened | guest_id=g-1 | guest="Ana Souza" | stay_id=s-2 | status=active | dates=2024-02-01..2024-02-05 | superseded=[s-1]`,
		line)

	assert.Equal(t, "[t] guest.updated | guest_id=g-1",
		FormatLine(RegistryEvent{Type: GuestUpdated, GuestID: "g-1", OccurredAt: "t"}))
}

func TestHandleMessage_AppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "registry.log")

	for _, typ := range []string{GuestRegistered, StayCancelled} {
		body, err := json.Marshal(RegistryEvent{Type: typ, GuestID: "g-1", OccurredAt: "t"})
		require.NoError(t, err)
		require.NoError(t, HandleMessage(path, body))
	}

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], GuestRegistered)
	assert.Contains(t, lines[1], StayCancelled)
}

func TestHandleMessage_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.log")
	assert.Error(t, HandleMessage(path, []byte("not json")))
	assert.Error(t, HandleMessage(path, []byte(`{"type":""}`)))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
