package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inkpost/internal/logs"
	"inkpost/internal/storage"
)

const maxUploadSize = 10 << 20

// ImageHandler 图片处理 Handler
type ImageHandler struct {
	store storage.ImageStore
}

func NewImageHandler(store storage.ImageStore) *ImageHandler {
	return &ImageHandler{store: store}
}

// Upload stores an image pasted into the post editor (POST /upload/).
func (h *ImageHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image was uploaded."})
		return
	}
	defer file.Close()

	// 验证文件类型
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only image files are allowed."})
		return
	}

	if header.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image size must not exceed 10MB."})
		return
	}

	key, err := h.store.Save(c.Request.Context(), storage.FolderEditor, header.Filename, contentType, file)
	if err != nil {
		logs.Error.Printf("upload image: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": h.store.URL(key)})
}
