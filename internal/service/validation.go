package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"pizzapos/internal/apperr"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Decimals are validated through their float value so gt/gte/lt work.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func (s *Service) check(req any) error {
	if err := s.validate.Struct(req); err != nil {
		return validationError(err, "")
	}
	return nil
}

// checkEach validates every element of a bulk payload, naming the first bad index.
func checkEach[T any](s *Service, reqs []T, what string) error {
	if len(reqs) == 0 {
		return apperr.Validation(fmt.Sprintf("at least one %s is required", what))
	}
	for i := range reqs {
		if err := s.validate.Struct(reqs[i]); err != nil {
			return validationError(err, fmt.Sprintf("[%d].", i))
		}
	}
	return nil
}

func validationError(err error, prefix string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Validation(err.Error())
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, prefix+fieldPath(fe)+" "+describe(fe))
	}
	return apperr.Validation(strings.Join(parts, "; "))
}

func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gt":
		return "must be greater than " + fe.Param()
	}
	return "is invalid"
}
