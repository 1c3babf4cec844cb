// Package settings stores the device_settings object issued by the study
// server at registration. Each top-level field is kept as raw JSON text so
// values of any type survive a round trip.
package settings
