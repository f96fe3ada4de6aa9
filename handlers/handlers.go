// Package handlers exposes the page-level operations of the app as a
// JSON API consumed by the bundled frontend. Handlers orchestrate store
// calls only; they never hold authoritative state of their own.
package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// bindError turns a gin binding failure into a single user-facing
// message, naming the first offending field when the error came from
// the validator.
func bindError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		switch f.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", f.Field())
		case "email":
			return fmt.Sprintf("%s must be a valid email address", f.Field())
		case "min":
			return fmt.Sprintf("%s must have at least %s entries", f.Field(), f.Param())
		case "oneof":
			return fmt.Sprintf("%s must be one of: %s", f.Field(), f.Param())
		}
		return fmt.Sprintf("%s failed %s validation", f.Field(), f.Tag())
	}
	return err.Error()
}
