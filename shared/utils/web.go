package utils

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	internal_errors "github.com/mergington/activities/shared/errors"
	"github.com/mergington/activities/shared/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// WriteErrorAndStatusCode answers with the status err carries, or 500.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	if se, ok := internal_errors.AsStatusError(err); ok {
		http.Error(w, se.Error(), se.StatusCode)
		return
	}
	logger.Log.Error("request failed", "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// Validate checks the validate tags of body and turns a failure into a 400.
func Validate(body any) error {
	if err := validate.Struct(body); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &internal_errors.ErrorWithStatusCode{
				Message:    "Invalid field: " + verrs[0].Field(),
				StatusCode: http.StatusBadRequest,
			}
		}
		return &internal_errors.ErrorWithStatusCode{Message: "Invalid request", StatusCode: http.StatusBadRequest}
	}
	return nil
}
