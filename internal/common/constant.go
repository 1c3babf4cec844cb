package common

// Metadata keys of the local persistent store.
const (
	KeyServerURL             = "server_url"
	KeyPatientID             = "patient_id"
	KeyPassword              = "password"
	KeyIsRegistered          = "is_registered"
	KeyClientPublicKey       = "client_public_key"
	KeyKeyWritten            = "key_written"
	KeyDeviceSettingsSet     = "device_settings_set"
	KeyErrorDuringRegister   = "error_during_registration"
	KeyStudyID               = "study_id"
	KeyStudyName             = "study_name"
	KeyHashSalt              = "hash_salt"
	KeyHashIterations        = "hash_iterations"
	KeyUseAnonymizedHashing  = "use_anonymized_hashing"
	KeyAllowCellularUpload   = "allow_upload_over_cellular_data"
	KeyCallClinicianButton   = "call_clinician_button_enabled"
	KeyCallResearchAssistant = "call_research_assistant_button_enabled"
	KeyPushToken             = "fcm_instance_id"
)

// MinPasswordLength is the shortest replacement password accepted at registration.
const MinPasswordLength = 6
