package utils

import (
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceIDFrom(t *testing.T) {
	mac, err := net.ParseMAC("00:1a:2b:3c:4d:5e")
	require.NoError(t, err)

	t.Run("first active interface", func(t *testing.T) {
		id := deviceIDFrom(func() ([]net.Interface, error) {
			return []net.Interface{
				{Name: "lo", Flags: net.FlagUp | net.FlagLoopback},
				{Name: "eth0", Flags: net.FlagUp, HardwareAddr: mac},
			}, nil
		})
		assert.True(t, strings.HasPrefix(id, "POS-"))
		assert.Len(t, id, len("POS-")+8)
	})

	t.Run("stable", func(t *testing.T) {
		list := func() ([]net.Interface, error) {
			return []net.Interface{{Name: "eth0", Flags: net.FlagUp, HardwareAddr: mac}}, nil
		}
		assert.Equal(t, deviceIDFrom(list), deviceIDFrom(list))
	})

	t.Run("no interfaces", func(t *testing.T) {
		id := deviceIDFrom(func() ([]net.Interface, error) { return nil, errors.New("boom") })
		assert.Equal(t, UnknownDevice, id)
	})

	t.Run("only down interfaces", func(t *testing.T) {
		id := deviceIDFrom(func() ([]net.Interface, error) {
			return []net.Interface{{Name: "eth0", HardwareAddr: mac}}, nil
		})
		assert.Equal(t, UnknownDevice, id)
	})
}

func TestLicenseKeyRoundTrip(t *testing.T) {
	expiry := time.Date(2027, 3, 7, 0, 0, 0, 0, time.Local)
	key := LicenseKey("POS-ABCD1234", expiry, "secret")
	assert.True(t, strings.HasPrefix(key, "20270307-"))

	expires, err := VerifyLicenseKey(key, "POS-ABCD1234", "secret")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2027, 3, 7, 23, 59, 59, 0, time.Local), expires)

	expires, err = VerifyLicenseKey(strings.ToLower(key), "POS-ABCD1234", "secret")
	require.NoError(t, err)
	assert.Equal(t, 2027, expires.Year())
}

func TestVerifyLicenseKey_Rejects(t *testing.T) {
	key := LicenseKey("POS-ABCD1234", time.Date(2027, 1, 1, 0, 0, 0, 0, time.Local), "secret")

	tests := []struct {
		name, key, device, secret string
	}{
		{"other device", key, "POS-FFFF0000", "secret"},
		{"other secret", key, "POS-ABCD1234", "other"},
		{"tampered date", "20991231" + key[8:], "POS-ABCD1234", "secret"},
		{"no separator", "20270101ABCDEF", "POS-ABCD1234", "secret"},
		{"bad date", "2027XX01-ABCDEF123456", "POS-ABCD1234", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyLicenseKey(tt.key, tt.device, tt.secret)
			assert.ErrorIs(t, err, ErrInvalidLicense)
		})
	}
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, uint(42), ParseUint("42"))
	assert.Equal(t, uint(0), ParseUint("-1"))
	assert.Equal(t, uint(0), ParseUint("abc"))
	assert.Equal(t, 3, ParseInt("3", 1))
	assert.Equal(t, 1, ParseInt("", 1))
}
