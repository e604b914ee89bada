// Package store implements the repositories for the job-board domain:
// companies, jobs, users, and applications. Static statements are built with
// the database.Builder; dynamic partial updates and listing filters go
// through the fragment builders, with the store continuing the placeholder
// sequence for trailing identifiers.
package store

import (
	"github.com/go-playground/validator/v10"

	"github.com/gaborage/jobly/apperror"
)

// validate checks domain invariants on create inputs. Request-shape
// validation happens upstream; this only guards the storage contract.
var validate = validator.New(validator.WithRequiredStructEnabled())

func validateInput(input any) error {
	if err := validate.Struct(input); err != nil {
		return apperror.BadRequest("invalid input: %v", err)
	}
	return nil
}
