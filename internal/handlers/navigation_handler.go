package handlers

import (
	"net/http"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/models"
	"go-ticket-pos/internal/permissions"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var navigationResource = resource{module: "user-management", entity: "navigation", global: true}

type NavigationRequest struct {
	ParentID  *uint  `json:"parent_id"`
	Name      string `json:"name" binding:"required,notblank,max=100"`
	Slug      string `json:"slug" binding:"required,max=100"`
	Path      string `json:"path" binding:"max=191"`
	Icon      string `json:"icon" binding:"max=50"`
	SortOrder int    `json:"sort_order" binding:"gte=0"`
}

func allNavigations(c *gin.Context) ([]models.Navigation, error) {
	var navs []models.Navigation
	err := database.DB.WithContext(c.Request.Context()).Find(&navs).Error
	return navs, err
}

// GetNavigationTree returns the nested sidebar tree.
func GetNavigationTree(c *gin.Context) {
	navs, err := allNavigations(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch navigations"})
		return
	}
	tree := permissions.BuildTree(navs)
	if tree == nil {
		tree = []models.Navigation{}
	}
	c.JSON(http.StatusOK, tree)
}

// GetNavigationFlat returns the tree flattened depth-first, for parent dropdowns.
func GetNavigationFlat(c *gin.Context) {
	navs, err := allNavigations(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch navigations"})
		return
	}
	c.JSON(http.StatusOK, permissions.Flatten(permissions.BuildTree(navs)))
}

func GetNavigation(c *gin.Context) {
	showRecord[models.Navigation](c, navigationResource)
}

func slugTaken(slug string, exceptID uint) bool {
	var n int64
	q := database.DB.Model(&models.Navigation{}).Where("slug = ?", slug)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	q.Count(&n)
	return n > 0
}

// validParent checks the parent exists and would not make id its own ancestor.
func validParent(c *gin.Context, navs []models.Navigation, id uint, parentID *uint) bool {
	if parentID == nil {
		return true
	}
	exists := false
	for _, n := range navs {
		if n.ID == *parentID {
			exists = true
			break
		}
	}
	if !exists {
		fieldError(c, "parent_id", "the selected parent does not exist")
		return false
	}
	if id != 0 && permissions.WouldCycle(navs, id, *parentID) {
		fieldError(c, "parent_id", "a navigation cannot be moved under itself or its descendants")
		return false
	}
	return true
}

func CreateNavigation(c *gin.Context) {
	var input NavigationRequest
	if !bindJSON(c, &input) {
		return
	}
	if slugTaken(input.Slug, 0) {
		fieldError(c, "slug", "slug has already been taken")
		return
	}
	navs, err := allNavigations(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch navigations"})
		return
	}
	if !validParent(c, navs, 0, input.ParentID) {
		return
	}

	nav := models.Navigation{
		ParentID:  input.ParentID,
		Name:      input.Name,
		Slug:      input.Slug,
		Path:      input.Path,
		Icon:      input.Icon,
		SortOrder: input.SortOrder,
	}
	if err := database.DB.Create(&nav).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create navigation"})
		return
	}

	recordAudit(c, navigationResource, models.AuditCreate, nav.ID, nil, nav)
	c.JSON(http.StatusCreated, nav)
}

func UpdateNavigation(c *gin.Context) {
	nav, ok := loadRecord[models.Navigation](c, scoped(c, navigationResource), navigationResource)
	if !ok {
		return
	}
	var input NavigationRequest
	if !bindJSON(c, &input) {
		return
	}
	if slugTaken(input.Slug, nav.ID) {
		fieldError(c, "slug", "slug has already been taken")
		return
	}
	navs, err := allNavigations(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch navigations"})
		return
	}
	if !validParent(c, navs, nav.ID, input.ParentID) {
		return
	}

	before := *nav
	nav.ParentID = input.ParentID
	nav.Name = input.Name
	nav.Slug = input.Slug
	nav.Path = input.Path
	nav.Icon = input.Icon
	nav.SortOrder = input.SortOrder
	if err := database.DB.Save(nav).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update navigation"})
		return
	}

	recordAudit(c, navigationResource, models.AuditUpdate, nav.ID, before, nav)
	c.JSON(http.StatusOK, nav)
}

// DeleteNavigation removes a leaf entry together with the permission rows keyed on it.
func DeleteNavigation(c *gin.Context) {
	nav, ok := loadRecord[models.Navigation](c, scoped(c, navigationResource), navigationResource)
	if !ok {
		return
	}

	var children int64
	database.DB.Model(&models.Navigation{}).Where("parent_id = ?", nav.ID).Count(&children)
	if children > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Navigation has children; move or delete them first"})
		return
	}

	err := database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("navigation_id = ?", nav.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(nav).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete navigation"})
		return
	}

	recordAudit(c, navigationResource, models.AuditDelete, nav.ID, nav, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Navigation deleted successfully"})
}
