package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go-ticket-pos/internal/auth"
	"go-ticket-pos/internal/config"
	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/logger"
	"go-ticket-pos/internal/models"
	"go-ticket-pos/internal/reports"
	"go-ticket-pos/internal/utils"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// connect opens the configured database for a command.
func connect() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := database.Connect(cfg.Database, logger.MustGetLogger()); err != nil {
		return nil, err
	}
	return database.DB, nil
}

func initCommands(root *cobra.Command) {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			cmd.Println("Schema is up to date")
			return nil
		},
	}

	var seed database.SeedOptions
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Install roles, navigation, the first tenant and its super admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(seed.AdminPassword) < 8 {
				return errors.New("--password must be at least 8 characters")
			}
			db, err := connect()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			seed.TenantCode = strings.ToUpper(seed.TenantCode)
			tenant, err := database.Seed(db, seed)
			if err != nil {
				return err
			}
			cmd.Printf("Seeded tenant %s (id %d), super admin %q\n", tenant.Code, tenant.ID, seed.AdminUsername)
			return nil
		},
	}
	seedCmd.Flags().StringVar(&seed.TenantCode, "tenant-code", "MAIN", "code of the first tenant")
	seedCmd.Flags().StringVar(&seed.TenantName, "tenant-name", "Main Branch", "name of the first tenant")
	seedCmd.Flags().StringVar(&seed.AdminUsername, "username", "superadmin", "super admin username")
	seedCmd.Flags().StringVar(&seed.AdminPassword, "password", "", "super admin password")
	_ = seedCmd.MarkFlagRequired("password")

	var nu newUser
	createUserCmd := &cobra.Command{
		Use:   "create-user",
		Short: "Add a user to a tenant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			user, err := createUser(db, nu)
			if err != nil {
				return err
			}
			cmd.Printf("Created user %q (id %d)\n", user.Username, user.ID)
			return nil
		},
	}
	createUserCmd.Flags().StringVar(&nu.TenantCode, "tenant", "MAIN", "tenant code")
	createUserCmd.Flags().StringVar(&nu.Username, "username", "", "login name")
	createUserCmd.Flags().StringVar(&nu.Name, "name", "", "display name")
	createUserCmd.Flags().StringVar(&nu.Password, "password", "", "password (min 8 characters)")
	createUserCmd.Flags().UintVar(&nu.RoleID, "role-id", models.RoleCashier, "role id (1 super admin, 2 admin, 3 supervisor, 4 cashier)")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("password")

	var tenantCode, username, password string
	resetCmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			if err := resetPassword(db, tenantCode, username, password); err != nil {
				return err
			}
			cmd.Printf("Password of %q reset\n", username)
			return nil
		},
	}
	resetCmd.Flags().StringVar(&tenantCode, "tenant", "MAIN", "tenant code")
	resetCmd.Flags().StringVar(&username, "username", "", "login name")
	resetCmd.Flags().StringVar(&password, "password", "", "new password (min 8 characters)")
	_ = resetCmd.MarkFlagRequired("username")
	_ = resetCmd.MarkFlagRequired("password")

	var deviceID, expires, secret string
	licenseCmd := &cobra.Command{
		Use:   "license-key",
		Short: "Issue a license key for a device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := issueLicense(deviceID, expires, secret)
			if err != nil {
				return err
			}
			cmd.Println(key)
			return nil
		},
	}
	licenseCmd.Flags().StringVar(&deviceID, "device-id", "", "device id shown on the lockdown screen (defaults to this machine)")
	licenseCmd.Flags().StringVar(&expires, "expires", "", "last valid day, YYYY-MM-DD")
	licenseCmd.Flags().StringVar(&secret, "secret", os.Getenv("LICENSE_SECRET"), "signing secret (LICENSE_SECRET)")
	_ = licenseCmd.MarkFlagRequired("expires")

	var ex exportOptions
	exportCmd := &cobra.Command{
		Use:   "export-sales",
		Short: "Write a tenant's sales report to an XLSX file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			if err := exportSales(db, ex); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", ex.Output)
			return nil
		},
	}
	today := time.Now().Format(models.DateLayout)
	exportCmd.Flags().StringVar(&ex.TenantCode, "tenant", "MAIN", "tenant code")
	exportCmd.Flags().StringVar(&ex.From, "from", today, "first business date, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&ex.To, "to", today, "last business date, YYYY-MM-DD")
	exportCmd.Flags().StringVarP(&ex.Output, "output", "o", "sales.xlsx", "output file")

	root.AddCommand(migrateCmd, seedCmd, createUserCmd, resetCmd, licenseCmd, exportCmd)
}

type newUser struct {
	TenantCode string
	Username   string
	Name       string
	Password   string
	RoleID     uint
}

func findTenant(db *gorm.DB, code string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := db.Where("code = ?", strings.ToUpper(code)).First(&tenant).Error; err != nil {
		return nil, errors.Wrapf(err, "tenant %q", code)
	}
	return &tenant, nil
}

func createUser(db *gorm.DB, nu newUser) (*models.User, error) {
	if len(nu.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	tenant, err := findTenant(db, nu.TenantCode)
	if err != nil {
		return nil, err
	}
	var role models.Role
	if err := db.First(&role, nu.RoleID).Error; err != nil {
		return nil, errors.Wrapf(err, "role %d", nu.RoleID)
	}
	hash, err := auth.HashPassword(nu.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		TenantID:     tenant.ID,
		Username:     strings.TrimSpace(nu.Username),
		Name:         nu.Name,
		PasswordHash: hash,
		RoleID:       role.ID,
		Status:       models.StatusActive,
	}
	if user.Name == "" {
		user.Name = user.Username
	}
	if err := db.Create(user).Error; err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return user, nil
}

func resetPassword(db *gorm.DB, tenantCode, username, password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	tenant, err := findTenant(db, tenantCode)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	res := db.Model(&models.User{}).
		Where("tenant_id = ? AND username = ?", tenant.ID, username).
		Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %q not found in tenant %s", username, tenant.Code)
	}
	return nil
}

func issueLicense(deviceID, expires, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("a signing secret is required")
	}
	day, err := time.ParseInLocation(models.DateLayout, expires, time.Local)
	if err != nil {
		return "", errors.Wrap(err, "--expires")
	}
	if deviceID == "" {
		deviceID = utils.DeviceID()
	}
	return utils.LicenseKey(deviceID, day, secret), nil
}

type exportOptions struct {
	TenantCode string
	From, To   string
	Output     string
}

func exportSales(db *gorm.DB, opts exportOptions) error {
	tenant, err := findTenant(db, opts.TenantCode)
	if err != nil {
		return err
	}
	report, err := database.GetSalesReport(database.ReportFilter{TenantID: tenant.ID, From: opts.From, To: opts.To})
	if err != nil {
		return err
	}
	data, err := reports.SalesWorkbook(report)
	if err != nil {
		return err
	}
	return os.WriteFile(opts.Output, data, 0o644)
}
