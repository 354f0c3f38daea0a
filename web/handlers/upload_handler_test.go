package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"crmdesk.com/crmdesk/infrastructure/filesystem"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performUpload(t *testing.T, r *gin.Engine, fileName, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + fileName + `"`}
	if contentType != "" {
		header["Content-Type"] = []string{contentType}
	}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadStoresAllowedFile(t *testing.T) {
	router, _, ep := setupRouter(t)
	store := ep.Storage.(*memStorage)

	content := bytes.Repeat([]byte{0x89}, 2<<20)
	w := performUpload(t, router, "photo.png", "image/png", content)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	var result struct {
		ID       string `json:"id"`
		FileName string `json:"fileName"`
		FileURL  string `json:"fileUrl"`
		FileType string `json:"fileType"`
		FileSize int64  `json:"fileSize"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "photo.png", result.FileName)
	assert.Equal(t, "image", result.FileType)
	assert.EqualValues(t, len(content), result.FileSize)
	assert.Equal(t, "https://files.test/"+result.ID, result.FileURL)
	assert.Contains(t, result.ID, ".png")
	assert.Len(t, store.objects[result.ID], len(content))
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performUpload(t, router, "huge.pdf", "application/pdf", bytes.Repeat([]byte{0x00}, 6<<20))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Field 'file' exceeds the 5MB size limit", decodeEnvelope(t, w).Message)
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := performUpload(t, router, "tool.exe", "application/x-msdownload", []byte("MZ"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeEnvelope(t, w).Message, "unsupported type 'application/x-msdownload'")
}

func TestUploadMissingFile(t *testing.T) {
	router, _, _ := setupRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Field 'file' is required", decodeEnvelope(t, w).Message)
}

func TestUploadStorageUnconfigured(t *testing.T) {
	router, _, ep := setupRouter(t)
	ep.Storage.(*memStorage).err = filesystem.ErrNotConfigured

	w := performUpload(t, router, "photo.png", "image/png", []byte("png"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "service dependency unavailable", decodeEnvelope(t, w).Message)
}
