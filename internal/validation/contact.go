package validation

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/webmatic/api/internal/model"
)

// ContactRules are the constraints on a contact-form submission.
var ContactRules = []Rule{
	{Field: "name", Tag: "required", Reason: "Le nom est requis"},
	{Field: "name", Tag: "omitempty,min=2,max=100", Reason: "Le nom doit contenir entre 2 et 100 caractères"},
	{Field: "name", Tag: "omitempty,personname", Reason: "Le nom contient des caractères invalides"},
	{Field: "email", Tag: "required", Reason: "L'adresse e-mail est requise"},
	{Field: "email", Tag: "omitempty,email", Reason: "L'adresse e-mail est invalide"},
	{Field: "phone", Tag: "omitempty,frphone", Reason: "Le numéro de téléphone est invalide"},
	{Field: "service", Tag: "required", Reason: "Le service est requis"},
	{Field: "service", Tag: "omitempty,service", Reason: "Service non valide"},
	{Field: "message", Tag: "required", Reason: "Le message est requis"},
	{Field: "message", Tag: "omitempty,min=10,max=2000", Reason: "Le message doit contenir entre 10 et 2000 caractères"},
	{Field: "message", Tag: "omitempty,nospam", Reason: "Message détecté comme spam"},
}

// StatusCheckRules are the constraints on a status-check creation.
var StatusCheckRules = []Rule{
	{Field: "client_name", Tag: "required", Reason: "Le nom du client est requis"},
	{Field: "client_name", Tag: "omitempty,min=2,max=100", Reason: "Le nom du client doit contenir entre 2 et 100 caractères"},
}

// ContactValidator validates and sanitizes contact forms.
type ContactValidator struct {
	v *Validator
}

// NewContactValidator returns a validator over ContactRules.
func NewContactValidator() *ContactValidator {
	return &ContactValidator{v: NewValidator(ContactRules)}
}

// Validate returns the sanitized form, or a *Error listing every failed rule.
// Name and message are NFC-normalized first so decomposed accents are treated
// as the precomposed letters the name alphabet allows. The rules run again on
// the sanitized values, so a stored record never falls outside the bounds
// (a name of only spaces or a message of only markup is rejected).
func (c *ContactValidator) Validate(in model.ContactForm) (model.ContactForm, error) {
	name := norm.NFC.String(in.Name)
	message := norm.NFC.String(in.Message)

	if errs := c.check(name, in.Email, in.Phone, in.Service, message); len(errs) > 0 {
		return model.ContactForm{}, &Error{Fields: errs}
	}

	out := model.ContactForm{
		Name:    SanitizeName(name),
		Email:   strings.ToLower(in.Email),
		Phone:   in.Phone,
		Service: in.Service,
		Message: Sanitize(message),
	}
	if errs := c.check(out.Name, out.Email, out.Phone, out.Service, out.Message); len(errs) > 0 {
		return model.ContactForm{}, &Error{Fields: errs}
	}
	return out, nil
}

func (c *ContactValidator) check(name, email, phone, service, message string) []FieldError {
	return c.v.Check(map[string]string{
		"name":    name,
		"email":   email,
		"phone":   phone,
		"service": service,
		"message": message,
	})
}

// StatusCheckValidator validates status-check creation requests.
type StatusCheckValidator struct {
	v *Validator
}

// NewStatusCheckValidator returns a validator over StatusCheckRules.
func NewStatusCheckValidator() *StatusCheckValidator {
	return &StatusCheckValidator{v: NewValidator(StatusCheckRules)}
}

// Validate returns in unchanged, or a *Error.
func (s *StatusCheckValidator) Validate(in model.StatusCheckInput) (model.StatusCheckInput, error) {
	if errs := s.v.Check(map[string]string{"client_name": in.ClientName}); len(errs) > 0 {
		return model.StatusCheckInput{}, &Error{Fields: errs}
	}
	return in, nil
}
