package snapshot

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"self-improving-agent/internal/domain"
)

func TestFileSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	f := NewFile(path)

	first := []domain.Message{
		{Role: domain.RoleSystem, Content: "sys"},
		{Role: domain.RoleUser, Content: "go"},
		{Role: domain.RoleAssistant, ToolCalls: []domain.ToolCall{{ID: "c1", Name: "create_file", Arguments: `{"file_name":"a.py"}`}}},
	}
	require.NoError(t, f.Save(first))

	second := []domain.Message{{Role: domain.RoleSystem, Content: "only"}}
	require.NoError(t, f.Save(second))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []domain.Message
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, second, got)
}

func TestFileRoundTrip(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "messages.json"))
	msgs := []domain.Message{
		{Role: domain.RoleUser, Content: "go"},
		{Role: domain.RoleTool, ToolCallID: "c1", Name: "execute_subprocess", Content: "1\n"},
	}
	require.NoError(t, f.Save(msgs))

	got, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, msgs, got)
}

func TestFileLoadMissing(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "absent.json"))

	_, err := f.Load()
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFileSaveEmptyWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	require.NoError(t, NewFile(path).Save(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestFileSaveIsWorldReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	require.NoError(t, NewFile(path).Save([]domain.Message{{Role: domain.RoleUser, Content: "go"}}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
