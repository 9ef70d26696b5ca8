package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadDoneNotice(t *testing.T) {
	m := &Model{Uploading: true}

	updated, _ := m.Update(UploadDoneMsg{Count: 3})
	got, ok := updated.(*Model)
	require.True(t, ok)

	assert.False(t, got.Uploading)
	assert.Equal(t, "3 documents successfully uploaded and indexed.", got.UploadNotice)
	require.Len(t, got.Messages, 1)
	assert.Contains(t, got.Messages[0], "3 documents successfully uploaded and indexed.")
}

func TestUploadDoneError(t *testing.T) {
	m := &Model{Uploading: true, UploadNotice: "stale"}

	updated, _ := m.Update(UploadDoneMsg{Err: errors.New("extracting a.pdf: bad stream")})
	got := updated.(*Model)

	assert.False(t, got.Uploading)
	assert.Empty(t, got.UploadNotice)
	require.Len(t, got.Messages, 1)
	assert.Contains(t, got.Messages[0], "bad stream")
}
