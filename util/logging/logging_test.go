package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	log.With("component", "lifecycle").WithGroup("book").Info("rented", "id", "b-1", "late_days", 2, "err", errors.New("boom"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "info", got["level"])
	require.Equal(t, "rented", got["message"])
	require.Equal(t, "lifecycle", got["component"])
	require.Equal(t, "b-1", got["book.id"])
	require.EqualValues(t, 2, got["book.late_days"])
	require.Equal(t, "boom", got["book.err"])
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Info("hidden")
	require.Zero(t, buf.Len())

	log.Warn("shown")
	require.Contains(t, buf.String(), "shown")
}
