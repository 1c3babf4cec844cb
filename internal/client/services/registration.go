package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/beiwe-client/internal/client/client"
	"github.com/dmitrijs2005/beiwe-client/internal/client/identity"
	"github.com/dmitrijs2005/beiwe-client/internal/client/models"
	"github.com/dmitrijs2005/beiwe-client/internal/client/urls"
	"github.com/dmitrijs2005/beiwe-client/internal/logging"
)

// KeyPrefix starts every encryption key a study server issues.
const KeyPrefix = "MIIBI"

// DefaultResubmitDelay separates the primary registration from the
// non-anonymized resubmission so the server sees distinct timestamps.
const DefaultResubmitDelay = time.Second

// NextStep names the onboarding screen that follows a registration.
type NextStep string

const (
	NextPhoneNumberEntry NextStep = "phone-number-entry"
	NextConsentForm      NextStep = "consent-form"
)

// RegistrationStore is the persistence RegistrationService writes through.
type RegistrationStore interface {
	SetServerURL(ctx context.Context, raw string) error
	SetLoginCredentials(ctx context.Context, patientID, password string) error
	SaveRegistration(ctx context.Context, reg models.Registration) error
	UseAnonymizedHashing(ctx context.Context) (bool, error)
	CompleteRegistration(ctx context.Context, newPassword string) error
	SetErrorDuringRegistration(ctx context.Context, v bool) error
	CallClinicianButtonEnabled(ctx context.Context) (bool, error)
	CallResearchAssistantButtonEnabled(ctx context.Context) (bool, error)
	RecordCrash(ctx context.Context, msg string) (string, error)
}

// RegistrationRequest is what the participant typed on the registration form.
type RegistrationRequest struct {
	// ServerURL is stored before registering when non-empty.
	ServerURL    string
	PatientID    string
	TempPassword string
	NewPassword  string
	// PhoneNumber is raw; only its hash is sent.
	PhoneNumber string
}

// RegistrationService runs the two-step registration protocol.
type RegistrationService struct {
	factory       *client.Factory
	codec         *client.Codec
	device        identity.Device
	urls          *urls.Resolver
	store         RegistrationStore
	log           logging.Logger
	resubmitDelay time.Duration
}

// RegistrationOption customizes a RegistrationService.
type RegistrationOption func(*RegistrationService)

// WithResubmitDelay overrides DefaultResubmitDelay.
func WithResubmitDelay(d time.Duration) RegistrationOption {
	return func(s *RegistrationService) { s.resubmitDelay = d }
}

func NewRegistrationService(
	factory *client.Factory,
	codec *client.Codec,
	device identity.Device,
	resolver *urls.Resolver,
	store RegistrationStore,
	log logging.Logger,
	opts ...RegistrationOption,
) *RegistrationService {
	s := &RegistrationService{
		factory:       factory,
		codec:         codec,
		device:        device,
		urls:          resolver,
		store:         store,
		log:           log.With("component", "registration"),
		resubmitDelay: DefaultResubmitDelay,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register stores the login credentials, sends the primary registration
// with anonymized identifiers and, when the server asks for plain hashing,
// resubmits the identifiers that way.
//
// The returned code follows the participant-facing contract: the HTTP
// status, 0 for a bad URL, 502 for a network failure, 404 for a 200 whose
// payload is not a study server's, -2 when local state cannot be read or
// written. The error is non-nil for every case except a plain HTTP status.
func (s *RegistrationService) Register(ctx context.Context, req RegistrationRequest) (int, error) {
	if req.ServerURL != "" {
		if err := s.store.SetServerURL(ctx, req.ServerURL); err != nil {
			return client.CodeLocalStore, fmt.Errorf("%w: store server url: %w", client.ErrLocalStore, err)
		}
	}
	if err := s.store.SetLoginCredentials(ctx, req.PatientID, req.TempPassword); err != nil {
		return client.CodeLocalStore, fmt.Errorf("%w: store credentials: %w", client.ErrLocalStore, err)
	}

	url, err := s.urls.Resolve(ctx, urls.PathRegister)
	if err != nil {
		return client.CodeLocalStore, fmt.Errorf("%w: %w", client.ErrLocalStore, err)
	}

	block, err := s.codec.Block(ctx, "")
	if err != nil {
		return client.CodeLocalStore, fmt.Errorf("%w: %w", client.ErrLocalStore, err)
	}

	s.log.Info(ctx, "registering", "url", url)
	resp, err := s.factory.PostForm(ctx, url, block+s.registrationParams(req, true), true)
	if err != nil {
		s.log.Error(ctx, "registration request failed", "error", err)
		return client.ResponseCode(err, 0), err
	}
	if resp.StatusCode != http.StatusOK {
		s.log.Warn(ctx, "registration refused", "code", resp.StatusCode)
		return resp.StatusCode, nil
	}

	reg, err := parseRegistration(resp.Body)
	if err != nil {
		s.log.Error(ctx, "invalid registration response", "error", err)
		if _, cerr := s.store.RecordCrash(ctx, err.Error()); cerr != nil {
			s.log.Error(ctx, "failed to record crash event", "error", cerr)
		}
		return client.CodeInvalidServer, err
	}

	if err := s.store.SaveRegistration(ctx, reg); err != nil {
		if ferr := s.store.SetErrorDuringRegistration(ctx, true); ferr != nil {
			s.log.Error(ctx, "failed to flag registration error", "error", ferr)
		}
		return client.CodeLocalStore, fmt.Errorf("%w: save registration: %w", client.ErrLocalStore, err)
	}

	anonymized, err := s.store.UseAnonymizedHashing(ctx)
	if err != nil {
		s.log.Warn(ctx, "cannot read hashing mode, skipping resubmit", "error", err)
		return http.StatusOK, nil
	}
	if !anonymized {
		s.resubmit(ctx, url, req)
	}
	return http.StatusOK, nil
}

// resubmit sends the same parameters hashed without anonymization. Its
// outcome never changes the primary result.
func (s *RegistrationService) resubmit(ctx context.Context, url string, req RegistrationRequest) {
	t := time.NewTimer(s.resubmitDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		s.log.Warn(ctx, "resubmit canceled", "error", ctx.Err())
		return
	case <-t.C:
	}

	block, err := s.codec.Block(ctx, "")
	if err != nil {
		s.log.Warn(ctx, "resubmit skipped", "error", err)
		return
	}
	resp, err := s.factory.PostForm(ctx, url, block+s.registrationParams(req, false), false)
	if err != nil {
		s.log.Warn(ctx, "resubmit failed", "error", err)
		return
	}
	if resp.StatusCode != http.StatusOK {
		s.log.Warn(ctx, "resubmit refused", "code", resp.StatusCode)
	}
}

// Finish completes a registration that returned 200: the participant's new
// password replaces the temporary one and the next onboarding step is
// chosen from the call-button settings.
func (s *RegistrationService) Finish(ctx context.Context, newPassword string) (NextStep, error) {
	if err := s.store.CompleteRegistration(ctx, newPassword); err != nil {
		return "", fmt.Errorf("store new password: %w", err)
	}
	clinician, err := s.store.CallClinicianButtonEnabled(ctx)
	if err != nil {
		return "", err
	}
	assistant, err := s.store.CallResearchAssistantButtonEnabled(ctx)
	if err != nil {
		return "", err
	}
	if clinician || assistant {
		return NextPhoneNumberEntry, nil
	}
	return NextConsentForm, nil
}

func (s *RegistrationService) registrationParams(req RegistrationRequest, anonymized bool) string {
	hw := s.device.Hardware()
	var b strings.Builder
	b.WriteString(client.MakeParameter("bluetooth_id", s.device.HashedBluetoothMAC(anonymized)))
	b.WriteString(client.MakeParameter("new_password", req.NewPassword))
	b.WriteString(client.MakeParameter("phone_number", s.device.HashPhoneNumber(req.PhoneNumber, anonymized)))
	b.WriteString(client.MakeParameter("device_id", s.device.HashedAndroidID()))
	b.WriteString(client.MakeParameter("device_os", identity.OSName))
	b.WriteString(client.MakeParameter("os_version", hw.OSVersion))
	b.WriteString(client.MakeParameter("hardware_id", hw.HardwareID))
	b.WriteString(client.MakeParameter("brand", hw.Brand))
	b.WriteString(client.MakeParameter("manufacturer", hw.Manufacturer))
	b.WriteString(client.MakeParameter("model", hw.Model))
	b.WriteString(client.MakeParameter("product", hw.Product))
	b.WriteString(client.MakeParameter("beiwe_version", hw.AppVersion))
	return b.String()
}

type registrationEnvelope struct {
	ClientPublicKey *string                    `json:"client_public_key"`
	DeviceSettings  map[string]json.RawMessage `json:"device_settings"`
	StudyID         json.RawMessage            `json:"study_id"`
	StudyName       json.RawMessage            `json:"study_name"`
}

// parseRegistration validates a 200 body. Every failure wraps
// client.ErrInvalidServer.
func parseRegistration(body []byte) (models.Registration, error) {
	var env registrationEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return models.Registration{}, fmt.Errorf("%w: %v", client.ErrInvalidServer, err)
	}
	if env.ClientPublicKey == nil {
		return models.Registration{}, fmt.Errorf("%w: missing client_public_key", client.ErrInvalidServer)
	}
	if env.DeviceSettings == nil {
		return models.Registration{}, fmt.Errorf("%w: missing device_settings", client.ErrInvalidServer)
	}
	key := *env.ClientPublicKey
	if !strings.HasPrefix(key, KeyPrefix) {
		return models.Registration{}, fmt.Errorf("%w: received an invalid encryption key from server: %q", client.ErrInvalidServer, key)
	}

	reg := models.Registration{ClientPublicKey: key, DeviceSettings: env.DeviceSettings}
	id, okID := jsonText(env.StudyID)
	name, okName := jsonText(env.StudyName)
	if okID && okName {
		reg.Study = &models.Study{ID: id, Name: name}
	}
	return reg, nil
}

// jsonText renders a JSON string or number as text. Absent, null, and
// structured values report false.
func jsonText(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}
