package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"
	"sync"
)

// UnknownDevice is returned when no usable hardware address is found.
const UnknownDevice = "POS-UNKNOWN"

var (
	deviceOnce sync.Once
	deviceID   string
)

// DeviceID identifies this terminal as "POS-XXXXXXXX", derived from the first active
// hardware address. Cashier sessions, licenses and the printer agent all report it.
func DeviceID() string {
	deviceOnce.Do(func() {
		deviceID = deviceIDFrom(net.Interfaces)
	})
	return deviceID
}

func deviceIDFrom(list func() ([]net.Interface, error)) string {
	interfaces, err := list()
	if err != nil {
		return UnknownDevice
	}

	var mac string
	for _, i := range interfaces {
		if i.Flags&net.FlagUp != 0 && i.Flags&net.FlagLoopback == 0 && len(i.HardwareAddr) > 0 {
			mac = i.HardwareAddr.String()
			break
		}
	}
	if mac == "" {
		return UnknownDevice
	}

	hash := sha256.Sum256([]byte(mac + "TICKET-POS-DEVICE"))
	return "POS-" + strings.ToUpper(hex.EncodeToString(hash[:])[:8])
}
