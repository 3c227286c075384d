package sns

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage_Envelope(t *testing.T) {
	got, err := buildMessage("Event reminder", `"Tech Meetup" is coming up`, map[string]string{
		"type":     "event_reminder",
		"event_id": "evt-1",
	})
	require.NoError(t, err)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal([]byte(got), &envelope))
	assert.Equal(t, `"Tech Meetup" is coming up`, envelope["default"])

	var gcm struct {
		Notification map[string]string `json:"notification"`
		Data         map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(envelope["GCM"]), &gcm))
	assert.Equal(t, "Event reminder", gcm.Notification["title"])
	assert.Equal(t, "evt-1", gcm.Data["event_id"])

	var apns struct {
		Aps struct {
			Alert map[string]string `json:"alert"`
		} `json:"aps"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(envelope["APNS"]), &apns))
	assert.Equal(t, "Event reminder", apns.Aps.Alert["title"])
	assert.Equal(t, "event_reminder", apns.Data["type"])
}

func TestBuildMessage_NilData(t *testing.T) {
	got, err := buildMessage("t", "b", nil)
	require.NoError(t, err)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal([]byte(got), &envelope))
	assert.Contains(t, envelope, "GCM")
	assert.Contains(t, envelope, "APNS")
}
