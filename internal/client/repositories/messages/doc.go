// Package messages stores push messages received from the study server until
// the participant dismisses them.
package messages
