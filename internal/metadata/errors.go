package metadata

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// LoadSpecError is a load spec problem with an optional line number and hint.
type LoadSpecError struct {
	Line    int
	Field   string
	Message string
	Hint    string
}

func (e *LoadSpecError) Error() string {
	var b strings.Builder
	b.WriteString("load spec")
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " [field: %s]", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Hint != "" {
		b.WriteString("\n\nHint: ")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// Is makes every load spec problem a configuration error.
func (e *LoadSpecError) Is(target error) bool {
	return target == metdbload.ErrInvalidConfig
}

func wrapXMLError(err error) error {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &LoadSpecError{
			Line:    syntaxErr.Line,
			Message: syntaxErr.Msg,
			Hint:    "Check that all XML tags are properly closed.",
		}
	}
	return &LoadSpecError{
		Message: err.Error(),
		Hint:    "The document root must be <load_spec> with a <connection> element.",
	}
}

func formatValidationErrors(result ValidationResult) error {
	if result.Valid {
		return nil
	}
	var msg strings.Builder
	for i, e := range result.Errors {
		fmt.Fprintf(&msg, "\n  %d. %s", i+1, e)
	}
	return &LoadSpecError{Message: "invalid document:" + msg.String()}
}
