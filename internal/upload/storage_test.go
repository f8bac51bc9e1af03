package upload

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uploadedFile builds a parsed multipart file the way handlers receive it.
func uploadedFile(t *testing.T, filename, contentType string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	file, fileHeader, err := req.FormFile("image")
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })

	return file, fileHeader
}

func TestStorage_Save(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	content := []byte("fake png bytes")
	file, header := uploadedFile(t, "avatar.png", "image/png", content)

	filename, err := storage.Save(file, header)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(filename, "-avatar.png"))

	// The prefix is a uuid, not the original name.
	require.Greater(t, len(filename), 36)
	_, err = uuid.Parse(filename[:36])
	assert.NoError(t, err)

	written, err := os.ReadFile(storage.Path(filename))
	require.NoError(t, err)
	assert.Equal(t, content, written)
}

func TestStorage_Save_UniqueNames(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	file1, header1 := uploadedFile(t, "avatar.png", "image/png", []byte("one"))
	file2, header2 := uploadedFile(t, "avatar.png", "image/png", []byte("two"))

	name1, err := storage.Save(file1, header1)
	require.NoError(t, err)
	name2, err := storage.Save(file2, header2)
	require.NoError(t, err)

	assert.NotEqual(t, name1, name2)
}

func TestStorage_Save_RejectsNonImage(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	file, header := uploadedFile(t, "script.sh", "application/x-sh", []byte("#!/bin/sh"))

	_, err = storage.Save(file, header)
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestStorage_Save_RejectsOversized(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	file, header := uploadedFile(t, "huge.png", "image/png", bytes.Repeat([]byte("x"), MaxFileSize+1))

	_, err = storage.Save(file, header)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestStorage_Save_StripsPathFromFilename(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewStorage(dir)
	require.NoError(t, err)

	file, header := uploadedFile(t, "../../etc/passwd.png", "image/png", []byte("data"))

	filename, err := storage.Save(file, header)
	require.NoError(t, err)

	assert.NotContains(t, filename, "/")
	assert.True(t, strings.HasSuffix(filename, "-passwd.png"))
}

func TestStorage_Path_ConfinedToDir(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewStorage(dir)
	require.NoError(t, err)

	path := storage.Path("../../../etc/passwd")
	assert.Equal(t, filepath.Join(dir, "passwd"), path)
}
