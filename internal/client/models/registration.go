package models

import "encoding/json"

// Registration is what a successful registration leaves on the device: the
// server-issued encryption key, the device settings object and, when the
// server sent both fields, the study identity.
type Registration struct {
	ClientPublicKey string
	DeviceSettings  map[string]json.RawMessage
	Study           *Study
}

// Study identifies the study the device was enrolled into.
type Study struct {
	ID   string
	Name string
}

// Credentials are the account id and the stored (hashed) password sent in
// every authenticated request.
type Credentials struct {
	PatientID string
	Password  string
}
