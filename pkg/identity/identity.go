package identity

import (
	"crypto/sha256"
	"encoding/base32"
	"strings"
)

// Google Calendar event ids must use the base32hex alphabet in
// lowercase (RFC 2938 section 3.1.2): characters a-v and 0-9.
var eventIDEncoding = base32.NewEncoding("0123456789abcdefghijklmnopqrstuv").WithPadding(base32.NoPadding)

const (
	// EventIDLength is the fixed width of derived event ids.
	EventIDLength = 26

	legacyMaxLength = 20
)

// EventID derives the remote calendar event id for a task id. The
// derivation is pure and deterministic: the same task id always maps
// to the same event id, on the create path and on every later
// lookup/update/delete path, with no side table involved.
func EventID(taskID string) string {
	sum := sha256.Sum256([]byte(taskID))
	return eventIDEncoding.EncodeToString(sum[:])[:EventIDLength]
}

// LegacyEventID reproduces the historical derivation: strip every
// character outside [a-zA-Z0-9] and truncate to 20 characters. It is
// lossy (distinct task ids can collide) and survives only so that
// events created under the old policy can still be found. New events
// always use EventID.
func LegacyEventID(taskID string) string {
	var b strings.Builder
	for _, r := range taskID {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == legacyMaxLength {
			break
		}
	}
	return b.String()
}
