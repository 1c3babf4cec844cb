// Package services implements the device's conversations with the study
// server: registration, batch upload of queued data files, fire-and-forget
// notifications, and the local store of received push messages.
//
// Every service is built from explicit collaborators (transport factory,
// security block codec, URL resolver, persistent store) and holds no
// package-level state.
package services
