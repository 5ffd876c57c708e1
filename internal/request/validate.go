package request

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/theirongolddev/runway/internal/config"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid request")

// FieldError describes one rejected field, named by its json path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every rejected field of a payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return ErrInvalid.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

var validate = sync.OnceValue(newValidator)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("finite", isFinite)
	v.RegisterValidation("date", isDate)
	v.RegisterValidation("profile", isProfile)
	v.RegisterStructValidation(inputLevel, Input{})

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the payload and returns a *ValidationError wrapping
// ErrInvalid when any field is rejected.
func (p Payload) Validate() error {
	err := validate().Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		out.Fields = append(out.Fields, FieldError{Field: field, Message: formatFieldError(field, fe)})
	}
	return out
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func formatFieldError(field string, fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "finite":
		return fmt.Sprintf("%s must be a finite number", field)
	case "date":
		return fmt.Sprintf("%s must be YYYY-MM-DD or RFC3339", field)
	case "profile":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(config.ProfileNames(), ", "))
	case "unique":
		return fmt.Sprintf("%s must have unique %s values", field, strings.ToLower(param))
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		return !math.IsNaN(f.Float()) && !math.IsInf(f.Float(), 0)
	default:
		return true
	}
}

func isDate(fl validator.FieldLevel) bool {
	_, err := parseDate(fl.Field().String())
	return err == nil
}

func isProfile(fl validator.FieldLevel) bool {
	return slices.Contains(config.ProfileNames(), config.NormalizeProfileName(fl.Field().String()))
}

// inputLevel enforces that driver and driverMultiplier come as a pair.
func inputLevel(sl validator.StructLevel) {
	in := sl.Current().Interface().(Input)
	switch {
	case in.Driver != "" && in.DriverMultiplier == nil:
		sl.ReportError(in.DriverMultiplier, "driverMultiplier", "DriverMultiplier", "required_with", "driver")
	case in.Driver == "" && in.DriverMultiplier != nil:
		sl.ReportError(in.Driver, "driver", "Driver", "required_with", "driverMultiplier")
	}
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
