package models

import "time"

// StoredMessage is a push message kept until the participant dismisses it.
type StoredMessage struct {
	ID         string
	Content    string
	ReceivedOn time.Time
}
