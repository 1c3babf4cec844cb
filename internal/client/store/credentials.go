package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/beiwe-client/internal/client/models"
	"github.com/dmitrijs2005/beiwe-client/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/beiwe-client/internal/client/urls"
	"github.com/dmitrijs2005/beiwe-client/internal/common"
	"github.com/dmitrijs2005/beiwe-client/internal/cryptox"
	"github.com/dmitrijs2005/beiwe-client/internal/dbx"
)

// ServerURL returns the stored study server URL, "" when none was set.
func (s *Store) ServerURL(ctx context.Context) (string, error) {
	return metadata.GetString(ctx, s.Metadata, common.KeyServerURL)
}

// SetServerURL stores raw after forcing the https scheme.
func (s *Store) SetServerURL(ctx context.Context, raw string) error {
	return metadata.SetString(ctx, s.Metadata, common.KeyServerURL, urls.NormalizeServerURL(raw))
}

// SetLoginCredentials stores the account id and the hash of password.
func (s *Store) SetLoginCredentials(ctx context.Context, patientID, password string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := metadata.SetString(ctx, repo, common.KeyPatientID, patientID); err != nil {
			return err
		}
		return metadata.SetString(ctx, repo, common.KeyPassword, cryptox.SafeHash(password))
	})
}

// SetPassword replaces the stored password hash.
func (s *Store) SetPassword(ctx context.Context, password string) error {
	return metadata.SetString(ctx, s.Metadata, common.KeyPassword, cryptox.SafeHash(password))
}

// Credentials returns the stored account id and password hash.
// common.ErrNotRegistered is returned when no account id has been stored.
func (s *Store) Credentials(ctx context.Context) (models.Credentials, error) {
	id, err := metadata.GetString(ctx, s.Metadata, common.KeyPatientID)
	if err != nil {
		return models.Credentials{}, err
	}
	if id == "" {
		return models.Credentials{}, common.ErrNotRegistered
	}
	pw, err := metadata.GetString(ctx, s.Metadata, common.KeyPassword)
	if err != nil {
		return models.Credentials{}, err
	}
	return models.Credentials{PatientID: id, Password: pw}, nil
}

// IsRegistered reports whether registration completed on this device.
func (s *Store) IsRegistered(ctx context.Context) (bool, error) {
	return metadata.GetBool(ctx, s.Metadata, common.KeyIsRegistered, false)
}

// CompleteRegistration stores the participant's chosen password and marks
// the device as registered.
func (s *Store) CompleteRegistration(ctx context.Context, newPassword string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := metadata.SetString(ctx, repo, common.KeyPassword, cryptox.SafeHash(newPassword)); err != nil {
			return err
		}
		if err := metadata.SetBool(ctx, repo, common.KeyIsRegistered, true); err != nil {
			return err
		}
		return metadata.SetBool(ctx, repo, common.KeyErrorDuringRegister, false)
	})
}

// Hasher returns the per-install identifier hasher, creating the salt and
// iteration count on first use.
func (s *Store) Hasher(ctx context.Context) (cryptox.Hasher, error) {
	s.hashMu.Lock()
	defer s.hashMu.Unlock()

	salt, err := s.Metadata.Get(ctx, common.KeyHashSalt)
	if err != nil {
		return cryptox.Hasher{}, err
	}
	if len(salt) == 0 {
		salt = cryptox.RandomBytes(cryptox.SaltSize)
		if err := s.Metadata.Set(ctx, common.KeyHashSalt, salt); err != nil {
			return cryptox.Hasher{}, fmt.Errorf("store hash salt: %w", err)
		}
	}

	iterations, err := metadata.GetInt(ctx, s.Metadata, common.KeyHashIterations)
	if err != nil {
		return cryptox.Hasher{}, err
	}
	if iterations == 0 {
		iterations = cryptox.RandomIterations()
		if err := metadata.SetInt(ctx, s.Metadata, common.KeyHashIterations, iterations); err != nil {
			return cryptox.Hasher{}, fmt.Errorf("store hash iterations: %w", err)
		}
	}

	return cryptox.NewHasher(salt, iterations), nil
}
