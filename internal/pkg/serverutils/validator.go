// FILE: internal/pkg/serverutils/validator.go
package serverutils

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation. The raw error is returned
// so the error handler middleware can translate it into a 400 response.
func ValidateRequest(req interface{}) error {
	return validate.Struct(req)
}
