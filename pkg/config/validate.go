package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/BryceDouglasJames/fileslicer/pkg/units"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("unit", validUnit)
	})
	return validate
}

// validUnit accepts the unit codes units.Parse understands.
func validUnit(fl validator.FieldLevel) bool {
	_, err := units.Parse(fl.Field().String())
	return err == nil
}

// Validate checks every field and reports all failures at once.
func (c *Config) Validate() error {
	err := structValidator().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Error{Err: err}
	}

	msgs := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		msgs[i] = fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return &Error{Err: errors.New(strings.Join(msgs, "; "))}
}
