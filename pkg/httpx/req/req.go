package req

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"mm_scanner/pkg/errcodes"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary         //nolint:gochecknoglobals // skip
	validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // skip
)

// Error ошибка разбора запроса, reply отдаёт её как 400.
type Error struct {
	Code        errcodes.ErrorCode
	Description string
	cause       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Description, e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) ErrorCode() errcodes.ErrorCode {
	return e.Code
}

func Read(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return &Error{
			Code:        errcodes.ValidationError,
			Description: "Invalid JSON",
			cause:       fmt.Errorf("json.Decode: %w", err),
		}
	}

	if err := validate.StructCtx(r.Context(), dest); err != nil {
		return &Error{
			Code:        errcodes.ValidationError,
			Description: "validation error",
			cause:       err,
		}
	}

	return nil
}
