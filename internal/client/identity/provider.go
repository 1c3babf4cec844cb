package identity

import (
	"context"

	"github.com/dmitrijs2005/beiwe-client/internal/client/models"
)

// CredentialSource returns the current account id and stored password.
type CredentialSource interface {
	Credentials(ctx context.Context) (models.Credentials, error)
}

// Provider pairs the immutable Device with live credentials.
type Provider struct {
	device Device
	creds  CredentialSource
}

func NewProvider(device Device, creds CredentialSource) *Provider {
	return &Provider{device: device, creds: creds}
}

func (p *Provider) Device() Device { return p.device }

// DeviceID is the hashed device identifier sent as device_id.
func (p *Provider) DeviceID() string { return p.device.HashedAndroidID() }

// Credentials is read through to the store on every call.
func (p *Provider) Credentials(ctx context.Context) (models.Credentials, error) {
	return p.creds.Credentials(ctx)
}
