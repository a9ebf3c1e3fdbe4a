package errors

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ValidateLayoutID checks that id is a canonical UUID string. Layout ids
// double as file names in the file store.
func ValidateLayoutID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "layout id cannot be empty")
	}
	u, err := uuid.Parse(id)
	if err != nil || u.String() != strings.ToLower(id) {
		return New(ErrCodeInvalidID, "invalid layout id: %q", id)
	}
	return nil
}

// ValidateStep checks a snapshot index against a history length.
func ValidateStep(step, length int) error {
	if step < 0 || step >= length {
		return New(ErrCodeInvalidStep, "step %d out of range [0, %d)", step, length)
	}
	return nil
}

// areaNameRegex matches names usable as file stems.
var areaNameRegex = regexp.MustCompile(`^[\pL\pN][\pL\pN _.'-]*$`)

// ValidateAreaName validates an area name coming from a world file.
// Empty names are allowed and replaced by callers.
func ValidateAreaName(name string) error {
	if name == "" {
		return nil
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidWorld, "area name too long (max 128 characters)")
	}
	if !areaNameRegex.MatchString(name) {
		return New(ErrCodeInvalidWorld, "invalid area name: %q", name)
	}
	return nil
}
