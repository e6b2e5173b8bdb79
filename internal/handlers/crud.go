package handlers

import (
	"errors"
	"net/http"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/middleware"
	"go-ticket-pos/internal/models"
	"go-ticket-pos/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// resource names a managed table for the generic handlers and the audit trail.
type resource struct {
	module string
	entity string
	global bool
}

// ListParams are the DataTable query parameters shared by every listing.
type ListParams struct {
	Page        int    `form:"page"`
	PerPage     int    `form:"per_page"`
	Search      string `form:"search"`
	SortBy      string `form:"sort_by"`
	SortOrder   string `form:"sort_order"`
	Status      string `form:"status"`
	WithTrashed bool   `form:"with_trashed"`
	OnlyTrashed bool   `form:"only_trashed"`
}

// Query converts the parameters for the database helpers.
func (p ListParams) Query() database.ListQuery {
	q := database.ListQuery{
		Page:      p.Page,
		PerPage:   p.PerPage,
		Search:    p.Search,
		SortBy:    p.SortBy,
		SortOrder: p.SortOrder,
	}
	switch {
	case p.OnlyTrashed:
		q.Trashed = database.TrashedOnly
	case p.WithTrashed:
		q.Trashed = database.TrashedWith
	}
	q.Normalize()
	return q
}

// scoped returns the request's DB handle, restricted to the caller's tenant unless global.
func scoped(c *gin.Context, r resource) *gorm.DB {
	db := database.DB.WithContext(c.Request.Context())
	if r.global {
		return db
	}
	return db.Scopes(database.ForTenant(middleware.TenantID(c)))
}

func paramID(c *gin.Context) (uint, bool) {
	id := utils.ParseUint(c.Param("id"))
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}

// loadRecord finds the :id row of T within db, answering 404 when absent.
func loadRecord[T any](c *gin.Context, db *gorm.DB, r resource) (*T, bool) {
	id, ok := paramID(c)
	if !ok {
		return nil, false
	}

	var rec T
	err := db.First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": capitalize(r.entity) + " not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch " + r.entity})
		return nil, false
	}
	return &rec, true
}

// deleteRecord soft-deletes the :id row of T.
func deleteRecord[T any](c *gin.Context, r resource) {
	rec, ok := loadRecord[T](c, scoped(c, r), r)
	if !ok {
		return
	}
	if err := database.DB.Delete(rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete " + r.entity})
		return
	}

	id, _ := paramID(c)
	recordAudit(c, r, models.AuditDelete, id, rec, nil)
	c.JSON(http.StatusOK, gin.H{"message": capitalize(r.entity) + " deleted successfully"})
}

// restoreRecord brings a soft-deleted :id row of T back.
func restoreRecord[T any](c *gin.Context, r resource) {
	rec, ok := loadRecord[T](c, scoped(c, r).Unscoped().Where("deleted_at IS NOT NULL"), r)
	if !ok {
		return
	}
	if err := database.DB.Unscoped().Model(rec).Update("deleted_at", nil).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restore " + r.entity})
		return
	}

	id, _ := paramID(c)
	if err := scoped(c, r).First(rec, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload " + r.entity})
		return
	}
	recordAudit(c, r, models.AuditRestore, id, nil, rec)
	c.JSON(http.StatusOK, gin.H{"message": capitalize(r.entity) + " restored successfully", "data": rec})
}

// showRecord answers the :id row of T.
func showRecord[T any](c *gin.Context, r resource, preload ...string) {
	db := scoped(c, r)
	for _, p := range preload {
		db = db.Preload(p)
	}
	rec, ok := loadRecord[T](c, db, r)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rec)
}

// preload is a FindPage scope loading the named associations.
func preload(names ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, n := range names {
			db = db.Preload(n)
		}
		return db
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
