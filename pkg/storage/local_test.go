package storage_test

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"garasi/pkg/storage"

	"github.com/stretchr/testify/assert"
)

func makeFileHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="images"; filename="`+filename+`"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	assert.NoError(t, err)
	_, err = part.Write([]byte(content))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(1 << 20)
	assert.NoError(t, err)
	return form.File["images"][0]
}

func TestLocalStore_Save(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, "/uploads")
	assert.NoError(t, err)

	path, err := store.Save(makeFileHeader(t, "civic.jpg", "fake image bytes"))
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/uploads/"))
	assert.True(t, strings.HasSuffix(path, "-civic.jpg"))

	// The file landed in the directory with the recorded name.
	onDisk := filepath.Join(dir, strings.TrimPrefix(path, "/uploads/"))
	data, err := os.ReadFile(onDisk)
	assert.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))
}

func TestLocalStore_UniqueNames(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	assert.NoError(t, err)

	first, err := store.Save(makeFileHeader(t, "civic.jpg", "one"))
	assert.NoError(t, err)
	second, err := store.Save(makeFileHeader(t, "civic.jpg", "two"))
	assert.NoError(t, err)

	// Same original filename, different stored paths.
	assert.NotEqual(t, first, second)
}

func TestNewLocalStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := storage.NewLocalStore(dir, "/uploads")
	assert.NoError(t, err)

	info, err := os.Stat(dir)
	assert.NoError(t, err)
	assert.True(t, info.IsDir())
}
