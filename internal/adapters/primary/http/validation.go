package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/jdw0903/EasyLFG/internal/core/domain"
)

// trimmed_min=N : au moins N runes une fois les espaces retirés.
const tagTrimmedMin = "trimmed_min"

// fieldErrors : erreur domaine renvoyée au client pour chaque champ rejeté.
var fieldErrors = map[string]error{
	"feedbackRequest.Message": domain.ErrMessageTooShort,
	"suggestRequest.Text":     domain.ErrSuggestionShort,
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation(tagTrimmedMin, trimmedMin); err != nil {
		panic(err)
	}
	return v
}

func trimmedMin(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
}

// check valide req et traduit le premier champ rejeté en erreur domaine.
func (s *Server) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return fmt.Errorf("validate request: %w", err)
	}
	for _, fe := range fields {
		if mapped, ok := fieldErrors[fe.StructNamespace()]; ok {
			return mapped
		}
	}
	return fmt.Errorf("%w: %s is invalid", domain.ErrValidation, fields[0].Field())
}
