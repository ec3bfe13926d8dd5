package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileID_AcceptsNumbersAndStrings(t *testing.T) {
	var files []File
	err := json.Unmarshal([]byte(`[
		{"id": 7, "filename": "a.txt", "file_size": 3, "owner_id": 1, "created_at": "2024-01-02T03:04:05Z"},
		{"id": "b9e1", "filename": "b.bin"}
	]`), &files)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, FileID("7"), files[0].ID)
	assert.Equal(t, "a.txt", files[0].Filename)
	assert.Equal(t, int64(3), files[0].FileSize)
	assert.Equal(t, 2024, files[0].CreatedAt.Year())
	assert.Equal(t, "b9e1", files[1].ID.String())
}

func TestFileID_RejectsObjects(t *testing.T) {
	var f File
	require.Error(t, json.Unmarshal([]byte(`{"id": {"x": 1}}`), &f))
}
