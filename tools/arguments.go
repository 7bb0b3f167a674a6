package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidArguments is returned when tool call arguments can not be decoded or fail validation
var ErrInvalidArguments = errors.New("tools: invalid arguments")

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeArguments decodes raw JSON arguments into v and validates it
func DecodeArguments(arguments string, v any) error {
	if strings.TrimSpace(arguments) == "" {
		arguments = "{}"
	}
	if err := json.Unmarshal([]byte(arguments), v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	return nil
}
