package logger

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(Config{Level: "debug", Format: "json"}, &buf).WithComponent("search")

	log.Info().Str("term", "Example Show").Msg("searching")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "search", line["component"])
	assert.Equal(t, "Example Show", line["term"])
	assert.NotEmpty(t, line["run_id"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(Config{Level: "warn", Format: "json"}, &buf)

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestProgressHook(t *testing.T) {
	var buf bytes.Buffer
	var p Progress
	log := newWithWriter(Config{Format: "json"}, &buf).WithHook(&p)

	log.Info().Msg("before start")
	assert.NotContains(t, buf.String(), "progress")

	p.Start(4)
	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Done()
		}()
	}
	wg.Wait()

	buf.Reset()
	log.Info().Msg("halfway")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "2/4 50%", line["progress"])
}
