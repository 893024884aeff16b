package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/atelierhaus/backend/internal/collection"
	"github.com/atelierhaus/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// respondCollectionError maps collection engine errors to HTTP statuses.
// Missing owners and records are 404, foreign records are a client error,
// storage and persistence failures are server errors.
func respondCollectionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, collection.ErrOwnerNotFound), errors.Is(err, collection.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, collection.ErrNotOwned):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, collection.ErrStorageFailure), errors.Is(err, collection.ErrPersistenceFailure):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// collectionJSON renders an owned collection as a stable JSON shape
func collectionJSON(col *collection.OwnedCollection) gin.H {
	records := col.Records()
	out := make([]gin.H, len(records))
	for i, r := range records {
		out[i] = gin.H{
			"id":          r.ID,
			"storage_key": r.StorageKey,
			"filename":    r.Filename,
			"mime_type":   r.MimeType,
			"size_bytes":  r.SizeBytes,
			"kind":        r.Kind,
			"sort_key":    r.SortKey,
			"primary":     r.Primary,
		}
	}
	return gin.H{
		"owner_id": col.OwnerID(),
		"count":    col.Len(),
		"media":    out,
	}
}

// adminContext pulls the authenticated admin and request origin out of the
// gin context for audit logging
func adminContext(c *gin.Context) (uuid.UUID, string, string) {
	var adminID uuid.UUID
	if v, exists := c.Get("userID"); exists {
		if id, ok := v.(uuid.UUID); ok {
			adminID = id
		}
	}
	return adminID, c.ClientIP(), c.Request.UserAgent()
}

// readMultipartFiles reads the uploaded files of a multipart form field
// into memory for validation and storage
func readMultipartFiles(c *gin.Context, field string, maxBatch int) ([]services.UploadFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.New("failed to parse multipart form")
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, errors.New(field + " is required")
	}
	if maxBatch > 0 && len(headers) > maxBatch {
		return nil, errors.New("too many files in one request")
	}

	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, errors.New("failed to open " + fh.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, errors.New("failed to read " + fh.Filename)
		}
		files = append(files, services.UploadFile{Filename: fh.Filename, Data: data})
	}
	return files, nil
}
