package handlers

import (
	"fmt"
	"net/http"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var roleResource = resource{module: "user-management", entity: "role", global: true}

type RoleRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=50"`
	Description string `json:"description" binding:"max=255"`
}

type PermissionInput struct {
	NavigationID uint `json:"navigation_id" binding:"required"`
	CanView      bool `json:"can_view"`
	CanCreate    bool `json:"can_create"`
	CanUpdate    bool `json:"can_update"`
	CanDelete    bool `json:"can_delete"`
}

type UpdatePermissionsRequest struct {
	Permissions []PermissionInput `json:"permissions" binding:"dive"`
}

func GetRoles(c *gin.Context) {
	var p ListParams
	if !bindQuery(c, &p) {
		return
	}
	q := p.Query()

	db := scoped(c, roleResource).Model(&models.Role{}).
		Scopes(database.Trashed(q.Trashed), database.Search(q.Search, "name", "description"))

	page, err := database.FindPage[models.Role](db, q, database.Sort(q, []string{"id", "name", "created_at"}, "id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch roles"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func GetRole(c *gin.Context) {
	showRecord[models.Role](c, roleResource, "Permissions")
}

func roleNameTaken(name string, exceptID uint) bool {
	var n int64
	q := database.DB.Unscoped().Model(&models.Role{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	q.Count(&n)
	return n > 0
}

func CreateRole(c *gin.Context) {
	var input RoleRequest
	if !bindJSON(c, &input) {
		return
	}
	if roleNameTaken(input.Name, 0) {
		fieldError(c, "name", "name has already been taken")
		return
	}

	role := models.Role{Name: input.Name, Description: input.Description}
	if err := database.DB.Create(&role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create role"})
		return
	}

	recordAudit(c, roleResource, models.AuditCreate, role.ID, nil, role)
	c.JSON(http.StatusCreated, role)
}

func UpdateRole(c *gin.Context) {
	role, ok := loadRecord[models.Role](c, scoped(c, roleResource), roleResource)
	if !ok {
		return
	}
	var input RoleRequest
	if !bindJSON(c, &input) {
		return
	}
	if roleNameTaken(input.Name, role.ID) {
		fieldError(c, "name", "name has already been taken")
		return
	}

	before := *role
	role.Name = input.Name
	role.Description = input.Description
	if err := database.DB.Save(role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	recordAudit(c, roleResource, models.AuditUpdate, role.ID, before, role)
	c.JSON(http.StatusOK, role)
}

// DeleteRole refuses built-in roles and roles still assigned to users.
func DeleteRole(c *gin.Context) {
	role, ok := loadRecord[models.Role](c, scoped(c, roleResource), roleResource)
	if !ok {
		return
	}
	if role.IsBuiltIn() {
		c.JSON(http.StatusConflict, gin.H{"error": "Built-in roles cannot be deleted"})
		return
	}

	var users int64
	database.DB.Model(&models.User{}).Where("role_id = ?", role.ID).Count(&users)
	if users > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Role is assigned to %d user(s)", users)})
		return
	}

	deleteRecord[models.Role](c, roleResource)
}

func RestoreRole(c *gin.Context) {
	restoreRecord[models.Role](c, roleResource)
}

// GetRolePermissions lists the role's permission rows with their navigation entries.
func GetRolePermissions(c *gin.Context) {
	role, ok := loadRecord[models.Role](c, scoped(c, roleResource), roleResource)
	if !ok {
		return
	}

	perms := []models.RolePermission{}
	if err := database.DB.Preload("Navigation").Where("role_id = ?", role.ID).Order("navigation_id").Find(&perms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch permissions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role, "permissions": perms})
}

// UpdateRolePermissions replaces the role's whole permission set in one transaction.
func UpdateRolePermissions(c *gin.Context) {
	role, ok := loadRecord[models.Role](c, scoped(c, roleResource), roleResource)
	if !ok {
		return
	}
	if role.ID == models.RoleSuperAdmin {
		c.JSON(http.StatusConflict, gin.H{"error": "The super admin role always has every permission"})
		return
	}
	var input UpdatePermissionsRequest
	if !bindJSON(c, &input) {
		return
	}

	ids := make([]uint, 0, len(input.Permissions))
	seen := map[uint]bool{}
	for i, p := range input.Permissions {
		if seen[p.NavigationID] {
			fieldError(c, fmt.Sprintf("permissions.%d.navigation_id", i), "duplicate navigation")
			return
		}
		seen[p.NavigationID] = true
		ids = append(ids, p.NavigationID)
	}

	var known int64
	if len(ids) > 0 {
		database.DB.Model(&models.Navigation{}).Where("id IN ?", ids).Count(&known)
	}
	if int(known) != len(ids) {
		fieldError(c, "permissions", "one or more navigation entries do not exist")
		return
	}

	var before []models.RolePermission
	rows := make([]models.RolePermission, 0, len(input.Permissions))
	err := database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", role.ID).Find(&before).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		for _, p := range input.Permissions {
			rows = append(rows, models.RolePermission{
				RoleID:       role.ID,
				NavigationID: p.NavigationID,
				CanView:      p.CanView,
				CanCreate:    p.CanCreate,
				CanUpdate:    p.CanUpdate,
				CanDelete:    p.CanDelete,
			})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update permissions"})
		return
	}

	recordAudit(c, resource{module: roleResource.module, entity: "role_permissions", global: true}, models.AuditUpdate, role.ID, before, rows)
	c.JSON(http.StatusOK, gin.H{"message": "Permissions updated successfully", "permissions": rows})
}

// GetRoleRoutes previews the sidebar routes the role would receive.
func GetRoleRoutes(c *gin.Context) {
	role, ok := loadRecord[models.Role](c, scoped(c, roleResource), roleResource)
	if !ok {
		return
	}
	routes, err := routesFor(database.DB.WithContext(c.Request.Context()), role.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build routes"})
		return
	}
	c.JSON(http.StatusOK, routes)
}
