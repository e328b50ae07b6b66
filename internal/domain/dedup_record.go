package domain

import "time"

type DedupRecord struct {
	IdentityHash string
	EventID      string
	EventType    EventType
	FirstSeenAt  time.Time
}
