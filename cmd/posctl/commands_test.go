package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-ticket-pos/internal/auth"
	"go-ticket-pos/internal/models"
	"go-ticket-pos/internal/testutil"
	"go-ticket-pos/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCreateUser(t *testing.T) {
	db, tenant := testutil.SetupDB(t)

	user, err := createUser(db, newUser{TenantCode: "main", Username: " gate1 ", Password: "password123", RoleID: models.RoleCashier})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, user.TenantID)
	assert.Equal(t, "gate1", user.Username)
	assert.Equal(t, "gate1", user.Name)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "password123"))

	_, err = createUser(db, newUser{TenantCode: "MAIN", Username: "x", Password: "short", RoleID: models.RoleCashier})
	assert.Error(t, err)
	_, err = createUser(db, newUser{TenantCode: "NOPE", Username: "x", Password: "password123", RoleID: models.RoleCashier})
	assert.Error(t, err)
	_, err = createUser(db, newUser{TenantCode: "MAIN", Username: "x", Password: "password123", RoleID: 99})
	assert.Error(t, err)
}

func TestResetPassword(t *testing.T) {
	db, tenant := testutil.SetupDB(t)

	require.NoError(t, resetPassword(db, "MAIN", testutil.AdminUsername, "brand-new-pass"))
	admin := testutil.Admin(t, db, tenant.ID)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "brand-new-pass"))

	assert.Error(t, resetPassword(db, "MAIN", "ghost", "brand-new-pass"))
	assert.Error(t, resetPassword(db, "MAIN", testutil.AdminUsername, "short"))
}

func TestIssueLicense(t *testing.T) {
	key, err := issueLicense("device-1", "2027-01-31", "vendor-secret")
	require.NoError(t, err)

	expires, err := utils.VerifyLicenseKey(key, "device-1", "vendor-secret")
	require.NoError(t, err)
	assert.Equal(t, "2027-01-31", expires.Format(models.DateLayout))

	_, err = issueLicense("device-1", "2027-01-31", "")
	assert.Error(t, err)
	_, err = issueLicense("device-1", "31/01/2027", "vendor-secret")
	assert.Error(t, err)

	key, err = issueLicense("", "2027-01-31", "vendor-secret")
	require.NoError(t, err)
	_, err = utils.VerifyLicenseKey(key, utils.DeviceID(), "vendor-secret")
	assert.NoError(t, err)
}

func TestExportSales(t *testing.T) {
	db, _ := testutil.SetupDB(t)
	out := filepath.Join(t.TempDir(), "sales.xlsx")
	today := time.Now().Format(models.DateLayout)

	require.NoError(t, exportSales(db, exportOptions{TenantCode: "MAIN", From: today, To: today, Output: out}))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	from, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, today, from)

	assert.Error(t, exportSales(db, exportOptions{TenantCode: "NOPE", From: today, To: today, Output: out}))
	_, err = os.Stat(out)
	assert.NoError(t, err)
}

func TestRun_UnknownCommand(t *testing.T) {
	assert.Error(t, run([]string{"explode"}))
	assert.NoError(t, run([]string{"--help"}))
}
