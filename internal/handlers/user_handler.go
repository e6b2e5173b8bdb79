package handlers

import (
	"net/http"

	"go-ticket-pos/internal/auth"
	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/middleware"
	"go-ticket-pos/internal/models"
	"go-ticket-pos/internal/utils"

	"github.com/gin-gonic/gin"
)

var userResource = resource{module: "user-management", entity: "user"}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required,notblank,max=50"`
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"omitempty,email,max=100"`
	Password string `json:"password" binding:"required,min=8"`
	RoleID   uint   `json:"role_id" binding:"required"`
	Status   string `json:"status" binding:"omitempty,oneof=active inactive"`
}

type UpdateUserRequest struct {
	Username string `json:"username" binding:"required,notblank,max=50"`
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"omitempty,email,max=100"`
	Password string `json:"password" binding:"omitempty,min=8"`
	RoleID   uint   `json:"role_id" binding:"required"`
	Status   string `json:"status" binding:"required,oneof=active inactive"`
}

type ChangePasswordRequest struct {
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

type UserListParams struct {
	ListParams
	RoleID uint `form:"role_id"`
}

// GetUsers lists the tenant's users for the DataTable.
func GetUsers(c *gin.Context) {
	var p UserListParams
	if !bindQuery(c, &p) {
		return
	}
	q := p.Query()

	db := scoped(c, userResource).Model(&models.User{}).
		Scopes(database.Trashed(q.Trashed), database.Search(q.Search, "username", "name", "email"))
	if p.Status != "" {
		db = db.Where("status = ?", p.Status)
	}
	if p.RoleID != 0 {
		db = db.Where("role_id = ?", p.RoleID)
	}

	page, err := database.FindPage[models.User](db, q,
		database.Sort(q, []string{"id", "username", "name", "email", "status", "last_login_at", "created_at"}, "id"),
		preload("Role"),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func GetUser(c *gin.Context) {
	showRecord[models.User](c, userResource, "Role")
}

// usernameTaken checks uniqueness inside the tenant, soft-deleted rows included.
func usernameTaken(c *gin.Context, username string, exceptID uint) bool {
	var n int64
	q := database.DB.Unscoped().Model(&models.User{}).
		Where("tenant_id = ? AND username = ?", middleware.TenantID(c), username)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	q.Count(&n)
	return n > 0
}

// assignableRole rejects unknown roles and lets only super admins hand out super admin.
func assignableRole(c *gin.Context, roleID uint) bool {
	var role models.Role
	if err := database.DB.First(&role, roleID).Error; err != nil {
		fieldError(c, "role_id", "the selected role is invalid")
		return false
	}
	if roleID == models.RoleSuperAdmin && middleware.RoleID(c) != models.RoleSuperAdmin {
		fieldError(c, "role_id", "only a super admin can assign this role")
		return false
	}
	return true
}

func CreateUser(c *gin.Context) {
	var input CreateUserRequest
	if !bindJSON(c, &input) {
		return
	}
	if usernameTaken(c, input.Username, 0) {
		fieldError(c, "username", "username has already been taken")
		return
	}
	if !assignableRole(c, input.RoleID) {
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	if input.Status == "" {
		input.Status = models.StatusActive
	}

	user := models.User{
		TenantID:     middleware.TenantID(c),
		Username:     input.Username,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		RoleID:       input.RoleID,
		Status:       input.Status,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	recordAudit(c, userResource, models.AuditCreate, user.ID, nil, user)
	c.JSON(http.StatusCreated, user)
}

func UpdateUser(c *gin.Context) {
	user, ok := loadRecord[models.User](c, scoped(c, userResource), userResource)
	if !ok {
		return
	}
	var input UpdateUserRequest
	if !bindJSON(c, &input) {
		return
	}
	if usernameTaken(c, input.Username, user.ID) {
		fieldError(c, "username", "username has already been taken")
		return
	}
	if !assignableRole(c, input.RoleID) {
		return
	}
	if user.ID == middleware.UserID(c) && input.Status != models.StatusActive {
		fieldError(c, "status", "you cannot deactivate your own account")
		return
	}

	before := *user
	user.Username = input.Username
	user.Name = input.Name
	user.Email = input.Email
	user.RoleID = input.RoleID
	user.Status = input.Status
	user.Role = nil
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user.PasswordHash = hash
	}

	if err := database.DB.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	recordAudit(c, userResource, models.AuditUpdate, user.ID, before, user)
	c.JSON(http.StatusOK, user)
}

func DeleteUser(c *gin.Context) {
	if utils.ParseUint(c.Param("id")) == middleware.UserID(c) {
		c.JSON(http.StatusConflict, gin.H{"error": "You cannot delete your own account"})
		return
	}
	deleteRecord[models.User](c, userResource)
}

func RestoreUser(c *gin.Context) {
	restoreRecord[models.User](c, userResource)
}

// ChangeUserPassword sets a new password for the :id user.
func ChangeUserPassword(c *gin.Context) {
	user, ok := loadRecord[models.User](c, scoped(c, userResource), userResource)
	if !ok {
		return
	}
	var input ChangePasswordRequest
	if !bindJSON(c, &input) {
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	if err := database.DB.Model(user).Update("password_hash", hash).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	recordAudit(c, userResource, models.AuditUpdate, user.ID, nil, gin.H{"password": "changed"})
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
