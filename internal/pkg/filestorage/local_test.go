package filestorage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	require.Len(t, form.File[field], 1)
	return form.File[field][0]
}

func TestLocalStorage_SaveFile(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir)
	require.NoError(t, err)
	ls.now = func() time.Time { return time.UnixMilli(1727740800000) }

	ref, err := ls.SaveFile(uploadHeader(t, "passport", "my passport.pdf", []byte("%PDF")))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^uploads/1727740800000-[0-9a-f]{8}-my_passport\.pdf$`), ref)

	data, err := os.ReadFile(ls.GetFullPath(ref))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)
}

func TestLocalStorage_SameNameDistinctReferences(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ls.now = func() time.Time { return time.UnixMilli(1) }

	a, err := ls.SaveFile(uploadHeader(t, "image", "photo.png", []byte("a")))
	require.NoError(t, err)
	b, err := ls.SaveFile(uploadHeader(t, "image", "photo.png", []byte("b")))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLocalStorage_StripsDirectories(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name := ls.storedName("../../etc/passwd")
	assert.Regexp(t, `^\d+-[0-9a-f]{8}-passwd$`, name)

	name = ls.storedName(`C:\docs\diplom.jpg`)
	assert.Regexp(t, `^\d+-[0-9a-f]{8}-diplom\.jpg$`, name)
}

func TestLocalStorage_DeleteFile(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir)
	require.NoError(t, err)

	ref, err := ls.SaveFile(uploadHeader(t, "diplom", "d.jpg", []byte("x")))
	require.NoError(t, err)

	require.NoError(t, ls.DeleteFile(ref))
	_, err = os.Stat(filepath.Join(dir, filepath.Base(ref)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ls.DeleteFile(ref))
	assert.NoError(t, ls.DeleteFile(""))
	assert.Error(t, ls.DeleteFile("uploads"))
}

func TestLocalStorage_SaveNil(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ref, err := ls.SaveFile(nil)
	assert.NoError(t, err)
	assert.Empty(t, ref)
}
