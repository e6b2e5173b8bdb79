package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/middleware"
	"go-ticket-pos/internal/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxUploadSize is the largest file the media library accepts.
const MaxUploadSize = 10 << 20

var mediaResource = resource{module: "content-management", entity: "media"}

var allowedMimeTypes = []string{
	"image/jpeg", "image/png", "image/gif", "image/webp", "image/svg+xml",
	"application/pdf", "video/mp4", "video/webm",
}

type MediaListParams struct {
	ListParams
	Type string `form:"type"`
}

type UpdateMediaRequest struct {
	AltText string `json:"alt_text" binding:"max=255"`
}

func GetMedia(c *gin.Context) {
	var p MediaListParams
	if !bindQuery(c, &p) {
		return
	}
	q := p.Query()

	db := scoped(c, mediaResource).Model(&models.MediaLibrary{}).
		Scopes(database.Trashed(q.Trashed), database.Search(q.Search, "original_name", "alt_text"))
	if p.Type != "" {
		db = db.Where("mime_type LIKE ?", p.Type+"%")
	}

	page, err := database.FindPage[models.MediaLibrary](db, q,
		database.Sort(q, []string{"id", "original_name", "size", "created_at"}, "id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch media"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func GetMediaItem(c *gin.Context) {
	showRecord[models.MediaLibrary](c, mediaResource)
}

// UploadMedia stores a multipart "file" under the tenant's upload folder with a random name.
// The content type is sniffed from the bytes, not trusted from the client.
func UploadMedia(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		fieldError(c, "file", "file is required")
		return
	}
	if file.Size > MaxUploadSize {
		fieldError(c, "file", fmt.Sprintf("file may not be greater than %d MiB", MaxUploadSize>>20))
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	mtype, err := mimetype.DetectReader(src)
	src.Close()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	if !mimetype.EqualsAny(mtype.String(), allowedMimeTypes...) {
		fieldError(c, "file", "file type "+mtype.String()+" is not allowed")
		return
	}

	tenantDir := fmt.Sprint(middleware.TenantID(c))
	filename := uuid.NewString() + mtype.Extension()
	dir := filepath.Join(appConfig.UploadDir, tenantDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare upload folder"})
		return
	}
	path := filepath.Join(dir, filename)
	if err := c.SaveUploadedFile(file, path); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	media := models.MediaLibrary{
		TenantID:     middleware.TenantID(c),
		FileName:     filename,
		OriginalName: filepath.Base(file.Filename),
		MimeType:     mtype.String(),
		Size:         file.Size,
		Path:         path,
		URL:          appConfig.BaseURL + "/uploads/" + tenantDir + "/" + filename,
		AltText:      strings.TrimSpace(c.PostForm("alt_text")),
		UploadedBy:   middleware.UserID(c),
	}
	if err := database.DB.Create(&media).Error; err != nil {
		_ = os.Remove(path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save media"})
		return
	}

	recordAudit(c, mediaResource, models.AuditCreate, media.ID, nil, media)
	c.JSON(http.StatusCreated, media)
}

func UpdateMedia(c *gin.Context) {
	media, ok := loadRecord[models.MediaLibrary](c, scoped(c, mediaResource), mediaResource)
	if !ok {
		return
	}
	var input UpdateMediaRequest
	if !bindJSON(c, &input) {
		return
	}

	before := *media
	media.AltText = input.AltText
	if err := database.DB.Model(media).Update("alt_text", input.AltText).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update media"})
		return
	}

	recordAudit(c, mediaResource, models.AuditUpdate, media.ID, before, media)
	c.JSON(http.StatusOK, media)
}

func DeleteMedia(c *gin.Context) {
	deleteRecord[models.MediaLibrary](c, mediaResource)
}

func RestoreMedia(c *gin.Context) {
	restoreRecord[models.MediaLibrary](c, mediaResource)
}

// ForceDeleteMedia removes the row, trashed or not, and its file.
func ForceDeleteMedia(c *gin.Context) {
	media, ok := loadRecord[models.MediaLibrary](c, scoped(c, mediaResource).Unscoped(), mediaResource)
	if !ok {
		return
	}
	if err := database.DB.Unscoped().Delete(media).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete media"})
		return
	}
	if err := os.Remove(media.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		requestLogger(c).Warn("Failed to remove media file ", media.Path, ": ", err)
	}

	recordAudit(c, mediaResource, models.AuditDelete, media.ID, media, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Media permanently deleted"})
}
