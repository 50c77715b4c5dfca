package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Services is the closed set of accepted values for the service field.
var Services = []string{
	"Création de site web",
	"Maintenance informatique",
	"Réparation console",
	"Support mobile",
	"Autre",
}

// SpamKeywords are rejected anywhere in a message, case-insensitively.
var SpamKeywords = []string{"casino", "lottery", "winner", "bitcoin", "crypto", "investment"}

var (
	// Latin letters including the Latin-1 accented range (minus × and ÷),
	// whitespace, hyphen and apostrophe.
	personNamePattern = regexp.MustCompile(`^[a-zA-ZÀ-ÖØ-öø-ÿ\s'-]+$`)

	// French mobile/landline shape: +33 or 0, then nine digits not starting with 0.
	frPhonePattern = regexp.MustCompile(`^(?:\+33|0)[1-9][0-9]{8}$`)

	serviceSet = func() map[string]struct{} {
		m := make(map[string]struct{}, len(Services))
		for _, s := range Services {
			m[s] = struct{}{}
		}
		return m
	}()
)

func newEngine() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "personname", func(fl validator.FieldLevel) bool {
		return personNamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "frphone", func(fl validator.FieldLevel) bool {
		return frPhonePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "service", func(fl validator.FieldLevel) bool {
		_, ok := serviceSet[fl.Field().String()]
		return ok
	})
	mustRegister(v, "nospam", func(fl validator.FieldLevel) bool {
		return !ContainsSpam(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// ContainsSpam reports whether s contains a spam keyword, ignoring case.
func ContainsSpam(s string) bool {
	lower := strings.ToLower(s)
	for _, w := range SpamKeywords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
