package client

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/beiwe-client/internal/client/models"
)

// Parameter names of the security block.
const (
	ParamPatientID = "patient_id"
	ParamPassword  = "password"
	ParamDeviceID  = "device_id"
)

// MakeParameter encodes one body fragment.
func MakeParameter(key, value string) string {
	return key + "=" + value + "&"
}

// SecurityParameters builds the block that opens every authenticated body.
func SecurityParameters(patientID, password, deviceID string) string {
	return MakeParameter(ParamPatientID, patientID) +
		MakeParameter(ParamPassword, password) +
		MakeParameter(ParamDeviceID, deviceID)
}

// ParseParameters splits a body built with MakeParameter back into ordered
// pairs. Only the first '=' of a fragment separates key from value, so
// base64 padding survives.
func ParseParameters(body string) [][2]string {
	var out [][2]string
	for _, frag := range strings.Split(body, "&") {
		if frag == "" {
			continue
		}
		k, v, _ := strings.Cut(frag, "=")
		out = append(out, [2]string{k, v})
	}
	return out
}

// Identity is what the codec needs to authenticate a request.
type Identity interface {
	DeviceID() string
	Credentials(ctx context.Context) (models.Credentials, error)
}

// Codec builds security blocks from the live credential store.
type Codec struct {
	id Identity
}

func NewCodec(id Identity) *Codec {
	return &Codec{id: id}
}

// Block returns the security block. A non-empty overridePassword replaces
// the stored password for this request only.
func (c *Codec) Block(ctx context.Context, overridePassword string) (string, error) {
	creds, err := c.id.Credentials(ctx)
	if err != nil {
		return "", err
	}
	pw := creds.Password
	if overridePassword != "" {
		pw = overridePassword
	}
	return SecurityParameters(creds.PatientID, pw, c.id.DeviceID()), nil
}
