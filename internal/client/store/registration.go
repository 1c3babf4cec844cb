package store

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/beiwe-client/internal/client/models"
	"github.com/dmitrijs2005/beiwe-client/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/beiwe-client/internal/client/repositories/settings"
	"github.com/dmitrijs2005/beiwe-client/internal/common"
	"github.com/dmitrijs2005/beiwe-client/internal/dbx"
)

// Device settings that are mirrored into metadata as typed flags, with the
// value used when the server leaves them out.
var settingFlags = []struct {
	key string
	def bool
}{
	{common.KeyUseAnonymizedHashing, true},
	{common.KeyAllowCellularUpload, false},
	{common.KeyCallClinicianButton, true},
	{common.KeyCallResearchAssistant, true},
}

// SaveRegistration persists the outcome of an accepted registration in one
// transaction: the key (overwriting any previous one), the full device
// settings object with its typed flags, and the study identity when present.
func (s *Store) SaveRegistration(ctx context.Context, reg models.Registration) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		meta := metadata.NewSQLiteRepository(tx)
		sets := settings.NewSQLiteRepository(tx)

		if err := metadata.SetString(ctx, meta, common.KeyClientPublicKey, reg.ClientPublicKey); err != nil {
			return err
		}
		if err := metadata.SetBool(ctx, meta, common.KeyKeyWritten, true); err != nil {
			return err
		}

		raw := make(map[string]string, len(reg.DeviceSettings))
		for name, v := range reg.DeviceSettings {
			raw[name] = string(v)
		}
		if err := sets.ReplaceAll(ctx, raw); err != nil {
			return err
		}
		for _, f := range settingFlags {
			v := f.def
			if msg, ok := reg.DeviceSettings[f.key]; ok {
				var b bool
				if err := json.Unmarshal(msg, &b); err == nil {
					v = b
				}
			}
			if err := metadata.SetBool(ctx, meta, f.key, v); err != nil {
				return err
			}
		}
		if err := metadata.SetBool(ctx, meta, common.KeyDeviceSettingsSet, true); err != nil {
			return err
		}

		if reg.Study != nil {
			if err := metadata.SetString(ctx, meta, common.KeyStudyID, reg.Study.ID); err != nil {
				return err
			}
			if err := metadata.SetString(ctx, meta, common.KeyStudyName, reg.Study.Name); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClientPublicKey returns the stored encryption key, "" when none.
func (s *Store) ClientPublicKey(ctx context.Context) (string, error) {
	return metadata.GetString(ctx, s.Metadata, common.KeyClientPublicKey)
}

// DeviceSettings returns the stored settings object as raw JSON per field.
func (s *Store) DeviceSettings(ctx context.Context) (map[string]json.RawMessage, error) {
	all, err := s.Settings.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(all))
	for k, v := range all {
		out[k] = json.RawMessage(v)
	}
	return out, nil
}

// DeviceSetting returns one setting, common.ErrNotFound when absent.
func (s *Store) DeviceSetting(ctx context.Context, name string) (json.RawMessage, error) {
	v, err := s.Settings.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(v), nil
}

// Study returns the stored study, or nil when the server never sent one.
func (s *Store) Study(ctx context.Context) (*models.Study, error) {
	id, err := metadata.GetString(ctx, s.Metadata, common.KeyStudyID)
	if err != nil {
		return nil, err
	}
	name, err := metadata.GetString(ctx, s.Metadata, common.KeyStudyName)
	if err != nil {
		return nil, err
	}
	if id == "" && name == "" {
		return nil, nil
	}
	return &models.Study{ID: id, Name: name}, nil
}

// SetErrorDuringRegistration flags (or clears) a registration that failed
// after the server accepted it.
func (s *Store) SetErrorDuringRegistration(ctx context.Context, v bool) error {
	return metadata.SetBool(ctx, s.Metadata, common.KeyErrorDuringRegister, v)
}

// CheckBadRegistration reports a device left half registered: no key, no
// device settings, or an error flagged during registration.
func (s *Store) CheckBadRegistration(ctx context.Context) (bool, error) {
	keyWritten, err := metadata.GetBool(ctx, s.Metadata, common.KeyKeyWritten, false)
	if err != nil {
		return false, err
	}
	settingsSet, err := metadata.GetBool(ctx, s.Metadata, common.KeyDeviceSettingsSet, false)
	if err != nil {
		return false, err
	}
	failed, err := metadata.GetBool(ctx, s.Metadata, common.KeyErrorDuringRegister, false)
	if err != nil {
		return false, err
	}
	return !keyWritten || !settingsSet || failed, nil
}

// UseAnonymizedHashing reports the hashing mode; true until the server says otherwise.
func (s *Store) UseAnonymizedHashing(ctx context.Context) (bool, error) {
	return metadata.GetBool(ctx, s.Metadata, common.KeyUseAnonymizedHashing, true)
}

func (s *Store) AllowUploadOverCellularData(ctx context.Context) (bool, error) {
	return metadata.GetBool(ctx, s.Metadata, common.KeyAllowCellularUpload, false)
}

func (s *Store) CallClinicianButtonEnabled(ctx context.Context) (bool, error) {
	return metadata.GetBool(ctx, s.Metadata, common.KeyCallClinicianButton, true)
}

func (s *Store) CallResearchAssistantButtonEnabled(ctx context.Context) (bool, error) {
	return metadata.GetBool(ctx, s.Metadata, common.KeyCallResearchAssistant, true)
}

// PushToken returns the last push token handed to the server.
func (s *Store) PushToken(ctx context.Context) (string, error) {
	return metadata.GetString(ctx, s.Metadata, common.KeyPushToken)
}

func (s *Store) SetPushToken(ctx context.Context, token string) error {
	return metadata.SetString(ctx, s.Metadata, common.KeyPushToken, token)
}
