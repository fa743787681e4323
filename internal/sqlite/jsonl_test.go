package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")

	records := []json.RawMessage{
		json.RawMessage(`{"id":"1","name":"first"}`),
		json.RawMessage(`{"id":"2","name":"second"}`),
	}

	require.NoError(t, writeJSONL(path, records))

	loaded, err := readJSONL(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.JSONEq(t, string(records[0]), string(loaded[0]))
	assert.JSONEq(t, string(records[1]), string(loaded[1]))
}

func TestReadJSONLSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")

	content := `{"id":"1"}
not json at all
{"id":"2"}

{"id":"3", broken
{"id":"4"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := readJSONL(path)
	require.NoError(t, err)
	require.Len(t, loaded, 3, "malformed and empty lines are skipped")
	assert.JSONEq(t, `{"id":"1"}`, string(loaded[0]))
	assert.JSONEq(t, `{"id":"4"}`, string(loaded[2]))
}

func TestReadJSONLMissingFile(t *testing.T) {
	_, err := readJSONL(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Error(t, err)
}

func TestWriteJSONLEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jsonl")

	require.NoError(t, writeJSONL(path, nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	loaded, err := readJSONL(path)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestWriteJSONLOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")

	require.NoError(t, writeJSONL(path, []json.RawMessage{json.RawMessage(`{"id":"old"}`)}))
	require.NoError(t, writeJSONL(path, []json.RawMessage{json.RawMessage(`{"id":"new"}`)}))

	loaded, err := readJSONL(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.JSONEq(t, `{"id":"new"}`, string(loaded[0]))
}
