package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// ErrInvalidLicense is returned for keys that are malformed or not issued for this device.
var ErrInvalidLicense = errors.New("invalid license key for this device")

const licenseDateLayout = "20060102"

// LicenseKey issues the key that activates deviceID until the end of the expiry day.
// Format: YYYYMMDD-XXXXXXXXXXXX, the suffix being a truncated HMAC of device and date.
func LicenseKey(deviceID string, expiry time.Time, secret string) string {
	date := expiry.Format(licenseDateLayout)
	return date + "-" + licenseSignature(deviceID, date, secret)
}

// VerifyLicenseKey checks a key against the device and returns the moment it expires.
func VerifyLicenseKey(key, deviceID, secret string) (time.Time, error) {
	date, sig, ok := strings.Cut(strings.ToUpper(strings.TrimSpace(key)), "-")
	if !ok || len(date) != len(licenseDateLayout) {
		return time.Time{}, ErrInvalidLicense
	}

	day, err := time.ParseInLocation(licenseDateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidLicense
	}

	expected := licenseSignature(deviceID, date, secret)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return time.Time{}, ErrInvalidLicense
	}

	return day.Add(24*time.Hour - time.Second), nil
}

func licenseSignature(deviceID, date, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(deviceID + "|" + date))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil))[:12])
}
