package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"crmdesk.com/crmdesk/web/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadSize = 5 << 20 // 5MB

// Coarse categories by MIME type. Anything outside this map is rejected.
var allowedFileTypes = map[string]string{
	"image/jpeg":         "image",
	"image/png":          "image",
	"image/gif":          "image",
	"image/webp":         "image",
	"application/pdf":    "pdf",
	"application/msword": "document",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "document",
	"application/vnd.ms-excel": "spreadsheet",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": "spreadsheet",
	"text/plain": "text",
}

type UploadResultDTO struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	FileURL  string `json:"fileUrl"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

// Upload stores one multipart file in blob storage and returns its metadata.
// No Attachment row is created here; that happens when the caller includes
// this metadata in a follow-up creation request.
func (ep *Endpoint) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Field 'file' is required"))
		return
	}

	if file.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Field 'file' exceeds the 5MB size limit"))
		return
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(file.Filename))
	}
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	category, ok := allowedFileTypes[contentType]
	if !ok {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(
			fmt.Sprintf("Field 'file' has unsupported type '%s'; allowed: images, PDF, Word, Excel, plain text", contentType)))
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer src.Close()

	// Timestamp plus random token keeps keys collision-resistant while
	// preserving the extension.
	token := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	key := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), token, strings.ToLower(filepath.Ext(file.Filename)))

	url, err := ep.Storage.Put(c.Request.Context(), key, contentType, src)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(UploadResultDTO{
		ID:       key,
		FileName: file.Filename,
		FileURL:  url,
		FileType: category,
		FileSize: file.Size,
	}))
}
