package event

import (
	"fmt"
	"time"
)

// MaxClockSkew is how far in the future a created_at timestamp may sit
// before the event is considered structurally invalid.
const MaxClockSkew = 60 * time.Second

// ValidationResult reports structural validity and the individual
// violations found. Structural validity is independent of cryptographic
// validity; callers combine them as needed.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// ValidateStructure checks field presence, hex lengths, timestamp sanity,
// kind range, and tag shape. It never touches cryptography: an event can
// be structurally valid yet carry a forged id.
func ValidateStructure(ev *Event) ValidationResult {
	return validateStructureAt(ev, time.Now())
}

func validateStructureAt(ev *Event, now time.Time) ValidationResult {
	var errs []string

	if ev == nil {
		return ValidationResult{Errors: []string{"event is nil"}}
	}
	if !isHex(ev.ID, 64) {
		errs = append(errs, "id must be 64 lowercase hex characters")
	}
	if !isHex(ev.PubKey, 64) {
		errs = append(errs, "pubkey must be 64 lowercase hex characters")
	}
	if !isHex(ev.Sig, 128) {
		errs = append(errs, "sig must be 128 lowercase hex characters")
	}
	if ev.CreatedAt > now.Add(MaxClockSkew).Unix() {
		errs = append(errs, "created_at is more than 60 seconds in the future")
	}
	if ev.Kind < 0 || ev.Kind > MaxKind {
		errs = append(errs, fmt.Sprintf("kind %d outside valid range 0-%d", ev.Kind, MaxKind))
	}
	if ev.Tags == nil {
		errs = append(errs, "tags must be present (empty list is valid)")
	}
	for i, tag := range ev.Tags {
		if len(tag) == 0 {
			errs = append(errs, fmt.Sprintf("tag %d is empty", i))
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
