// AngelaMos | 2026
// validate.go

package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// NewValidator returns a validator that reports JSON field names, so
// messages match what the client sent.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// IsUUID reports whether id can be bound to a UUID column. Path
// parameters are checked with it before they reach a query, since
// Postgres rejects a malformed uuid literal outright.
func IsUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
