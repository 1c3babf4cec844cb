// Package identity supplies the device and account identifiers every
// request carries. Device is built once at startup and never changes;
// credentials are looked up from the store on each request.
package identity

import (
	"github.com/dmitrijs2005/beiwe-client/internal/cryptox"
)

// OSName is sent as device_os.
const OSName = "Linux"

// Hardware describes the host for registration.
type Hardware struct {
	Brand        string
	Model        string
	Manufacturer string
	Product      string
	HardwareID   string
	OSVersion    string
	AppVersion   string
}

// Device holds the raw identifiers and their hashes. The zero value is not
// useful; build one with NewDevice.
type Device struct {
	rawAndroidID    string
	hashedAndroidID string
	rawMAC          string
	anonymizedMAC   string
	plainMAC        string
	hardware        Hardware
	hasher          cryptox.Hasher
}

// NewDevice derives every hash up front. The hasher is kept for phone
// numbers, which are only known at registration time.
func NewDevice(androidID, bluetoothMAC string, hw Hardware, hasher cryptox.Hasher) Device {
	return Device{
		rawAndroidID:    androidID,
		hashedAndroidID: cryptox.SafeHash(androidID),
		rawMAC:          bluetoothMAC,
		anonymizedMAC:   hasher.HashMAC(bluetoothMAC, true),
		plainMAC:        hasher.HashMAC(bluetoothMAC, false),
		hardware:        hw,
		hasher:          hasher,
	}
}

func (d Device) RawAndroidID() string { return d.rawAndroidID }
func (d Device) HashedAndroidID() string { return d.hashedAndroidID }
func (d Device) RawBluetoothMAC() string { return d.rawMAC }
func (d Device) Hardware() Hardware { return d.hardware }

// HashedBluetoothMAC returns the MAC hash for the requested hashing mode.
func (d Device) HashedBluetoothMAC(anonymized bool) string {
	if anonymized {
		return d.anonymizedMAC
	}
	return d.plainMAC
}

// HashPhoneNumber hashes phone with the device's hashing parameters.
func (d Device) HashPhoneNumber(phone string, anonymized bool) string {
	return d.hasher.HashPhoneNumber(phone, anonymized)
}
