package identity

import (
	"bytes"
	"net"
	"os"
	"runtime"
	"strings"

	"github.com/dmitrijs2005/beiwe-client/internal/cryptox"
)

var machineIDFiles = []string{"/etc/machine-id", "/var/lib/dbus/machine-id"}

// FromHost builds a Device from the machine id and the first hardware
// address of the host. Missing identifiers are recorded as "".
func FromHost(hasher cryptox.Hasher, appVersion string) Device {
	hostname, _ := os.Hostname()

	id := machineID()
	if id == "" {
		id = hostname
	}

	hw := Hardware{
		Brand:        runtime.GOOS,
		Model:        hostname,
		Manufacturer: "",
		Product:      "beiwe-client",
		HardwareID:   runtime.GOARCH,
		OSVersion:    osVersion(),
		AppVersion:   appVersion,
	}
	return NewDevice(id, firstMAC(), hw, hasher)
}

func machineID() string {
	for _, p := range machineIDFiles {
		b, err := os.ReadFile(p)
		if err == nil {
			if id := strings.TrimSpace(string(b)); id != "" {
				return id
			}
		}
	}
	return ""
}

func firstMAC() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, i := range ifaces {
		if i.Flags&net.FlagLoopback != 0 || len(i.HardwareAddr) == 0 {
			continue
		}
		return i.HardwareAddr.String()
	}
	return ""
}

func osVersion() string {
	b, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return runtime.GOOS
	}
	for _, line := range bytes.Split(b, []byte("\n")) {
		if v, ok := bytes.CutPrefix(line, []byte("VERSION_ID=")); ok {
			return strings.Trim(string(v), `"`)
		}
	}
	return runtime.GOOS
}
