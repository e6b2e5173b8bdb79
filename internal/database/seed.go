package database

import (
	"go-ticket-pos/internal/models"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedOptions names the first tenant and its super-admin account.
type SeedOptions struct {
	TenantCode    string
	TenantName    string
	AdminUsername string
	AdminPassword string
}

type seedNav struct {
	Slug     string
	Name     string
	Path     string
	Icon     string
	Children []seedNav
}

// defaultNavigation is the sidebar shipped with a fresh install.
var defaultNavigation = []seedNav{
	{Slug: "dashboard", Name: "Dashboard", Path: "/dashboard", Icon: "home"},
	{Slug: "user-management", Name: "User Management", Path: "/user-management", Icon: "users", Children: []seedNav{
		{Slug: "users", Name: "Users", Path: "/user-management/users"},
		{Slug: "roles", Name: "Roles", Path: "/user-management/roles"},
		{Slug: "navigations", Name: "Navigations", Path: "/user-management/navigations"},
	}},
	{Slug: "content-management", Name: "Content Management", Path: "/content-management", Icon: "image", Children: []seedNav{
		{Slug: "media-library", Name: "Media Library", Path: "/content-management/media"},
	}},
	{Slug: "rate-management", Name: "Rate Management", Path: "/rate-management", Icon: "tag", Children: []seedNav{
		{Slug: "rates", Name: "Rates", Path: "/rate-management/rates"},
		{Slug: "discounts", Name: "Discounts", Path: "/rate-management/discounts"},
	}},
	{Slug: "promoter-management", Name: "Promoter Management", Path: "/promoter-management", Icon: "megaphone", Children: []seedNav{
		{Slug: "promoters", Name: "Promoters", Path: "/promoter-management/promoters"},
		{Slug: "promoter-schedules", Name: "Schedules", Path: "/promoter-management/schedules"},
	}},
	{Slug: "vip-management", Name: "VIP Management", Path: "/vip-management", Icon: "star", Children: []seedNav{
		{Slug: "vips", Name: "VIP Cards", Path: "/vip-management/vips"},
	}},
	{Slug: "cashier", Name: "Cashier", Path: "/cashier", Icon: "cash", Children: []seedNav{
		{Slug: "pos", Name: "Point of Sale", Path: "/cashier/pos"},
		{Slug: "tickets", Name: "Ticket Validation", Path: "/cashier/tickets"},
	}},
	{Slug: "reports", Name: "Reports", Path: "/reports", Icon: "chart", Children: []seedNav{
		{Slug: "sales-report", Name: "Sales Report", Path: "/reports/sales"},
		{Slug: "closing-report", Name: "Closing Report", Path: "/reports/closing"},
		{Slug: "audit-trail", Name: "Audit Trail", Path: "/reports/audit-trails"},
	}},
	{Slug: "system-settings", Name: "System Settings", Path: "/system-settings", Icon: "settings", Children: []seedNav{
		{Slug: "settings", Name: "Settings", Path: "/system-settings/settings"},
		{Slug: "tenants", Name: "Tenants", Path: "/system-settings/tenants"},
	}},
}

// Slugs each built-in role may use. The super admin bypasses permission checks entirely.
var rolePermissionSlugs = map[uint][]string{
	models.RoleAdmin: {
		"dashboard", "user-management", "users", "content-management", "media-library",
		"rate-management", "rates", "discounts", "promoter-management", "promoters",
		"promoter-schedules", "vip-management", "vips", "cashier", "pos", "tickets",
		"reports", "sales-report", "closing-report", "audit-trail", "system-settings", "settings",
	},
	models.RoleSupervisor: {
		"dashboard", "promoter-management", "promoter-schedules", "vip-management", "vips",
		"cashier", "pos", "tickets", "reports", "sales-report", "closing-report",
	},
	models.RoleCashier: {"cashier", "pos", "tickets"},
}

var builtInRoles = []models.Role{
	{ID: models.RoleSuperAdmin, Name: "Super Admin", Description: "Full access across tenants"},
	{ID: models.RoleAdmin, Name: "Admin", Description: "Manages one tenant"},
	{ID: models.RoleSupervisor, Name: "Supervisor", Description: "Oversees cashiers and reports"},
	{ID: models.RoleCashier, Name: "Cashier", Description: "Operates the point of sale"},
}

// Seed installs the built-in roles, the default navigation tree with role permissions,
// the first tenant with its default settings and a super-admin user. Safe to run repeatedly.
func Seed(db *gorm.DB, opts SeedOptions) (*models.Tenant, error) {
	var tenant models.Tenant

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, role := range builtInRoles {
			r := role
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&r).Error; err != nil {
				return errors.Wrapf(err, "seed role %s", role.Name)
			}
		}

		slugIDs := map[string]uint{}
		if err := seedNavigation(tx, nil, defaultNavigation, slugIDs); err != nil {
			return errors.Wrap(err, "seed navigation")
		}

		for roleID, slugs := range rolePermissionSlugs {
			for _, slug := range slugs {
				perm := models.RolePermission{
					RoleID:       roleID,
					NavigationID: slugIDs[slug],
					CanView:      true,
					CanCreate:    roleID != models.RoleCashier || slug == "pos",
					CanUpdate:    roleID != models.RoleCashier || slug == "tickets",
					CanDelete:    roleID == models.RoleAdmin,
				}
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&perm).Error; err != nil {
					return errors.Wrapf(err, "seed permission %s", slug)
				}
			}
		}

		if err := tx.Where(models.Tenant{Code: opts.TenantCode}).
			Attrs(models.Tenant{Name: opts.TenantName, Active: true}).
			FirstOrCreate(&tenant).Error; err != nil {
			return errors.Wrap(err, "seed tenant")
		}

		if err := SeedSettings(tx, tenant.ID); err != nil {
			return errors.Wrap(err, "seed settings")
		}

		var count int64
		if err := tx.Model(&models.User{}).
			Where("tenant_id = ? AND username = ?", tenant.ID, opts.AdminUsername).
			Count(&count).Error; err != nil {
			return errors.Wrap(err, "count admin users")
		}
		if count > 0 {
			return nil
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return errors.Wrap(err, "hash admin password")
		}
		admin := models.User{
			TenantID:     tenant.ID,
			Username:     opts.AdminUsername,
			Name:         "Super Admin",
			PasswordHash: string(hash),
			RoleID:       models.RoleSuperAdmin,
			Status:       models.StatusActive,
		}
		return tx.Create(&admin).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "seed")
	}
	return &tenant, nil
}

func seedNavigation(tx *gorm.DB, parentID *uint, items []seedNav, slugIDs map[string]uint) error {
	for i, item := range items {
		nav := models.Navigation{
			ParentID:  parentID,
			Name:      item.Name,
			Slug:      item.Slug,
			Path:      item.Path,
			Icon:      item.Icon,
			SortOrder: i + 1,
		}
		if err := tx.Where(models.Navigation{Slug: item.Slug}).Attrs(nav).FirstOrCreate(&nav).Error; err != nil {
			return errors.Wrapf(err, "seed navigation %s", item.Slug)
		}
		slugIDs[item.Slug] = nav.ID

		id := nav.ID
		if err := seedNavigation(tx, &id, item.Children, slugIDs); err != nil {
			return err
		}
	}
	return nil
}

// SeedSettings stores the default value of every known setting the tenant does not have yet.
func SeedSettings(tx *gorm.DB, tenantID uint) error {
	for key, value := range DefaultSettings {
		setting := models.SystemSetting{TenantID: tenantID, Key: key, Value: value}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&setting).Error; err != nil {
			return errors.Wrapf(err, "seed setting %s", key)
		}
	}
	return nil
}
