package service

import (
	"regexp"
	"slices"
	"strings"

	"github.com/msomdec/limur-users/internal/domain"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern   = regexp.MustCompile(`^[\d\s\-+()]{7,}$`)
	zipcodePattern = regexp.MustCompile(`^\d{2}-\d{3}$|^\d{5}$|^\d{4}$|^[A-Z]\d[A-Z]\s\d[A-Z]{2}$`)
)

// UserForm carries the raw add-user form input.
type UserForm struct {
	Name        string
	Username    string
	Email       string
	Phone       string
	Street      string
	Suite       string
	City        string
	Zipcode     string
	CompanyName string
}

// FieldErrors maps form field names to user-facing messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

func (e FieldErrors) Unwrap() error {
	return domain.ErrInvalidInput
}

// Validate returns FieldErrors when any field is missing or malformed.
// Blank values count as missing. Formats are checked on the value as
// entered, so surrounding spaces make an email, phone or zipcode invalid.
// Suite and company name are optional.
func (f UserForm) Validate() error {
	errs := FieldErrors{}

	required := func(field, value, message string) bool {
		if strings.TrimSpace(value) == "" {
			errs[field] = message
			return false
		}
		return true
	}

	required("name", f.Name, "Imię i nazwisko jest wymagane")
	required("username", f.Username, "Nazwa użytkownika jest wymagana")
	if required("email", f.Email, "Email jest wymagany") && !emailPattern.MatchString(f.Email) {
		errs["email"] = "Email jest niepoprawny"
	}
	if required("phone", f.Phone, "Telefon jest wymagany") && !phonePattern.MatchString(f.Phone) {
		errs["phone"] = "Telefon jest niepoprawny"
	}
	required("street", f.Street, "Ulica jest wymagana")
	required("city", f.City, "Miasto jest wymagane")
	if required("zipcode", f.Zipcode, "Kod pocztowy jest wymagany") && !zipcodePattern.MatchString(f.Zipcode) {
		errs["zipcode"] = "Kod pocztowy jest niepoprawny (np. 12-345 lub 12345)"
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// User builds the record to add from the values as entered. A company is
// set only when a company name was given.
func (f UserForm) User(id int64) domain.User {
	u := domain.User{
		ID:       id,
		Name:     f.Name,
		Username: f.Username,
		Email:    f.Email,
		Phone:    f.Phone,
		Address: domain.Address{
			Street:  f.Street,
			Suite:   f.Suite,
			City:    f.City,
			Zipcode: f.Zipcode,
		},
	}
	if f.CompanyName != "" {
		u.Company = &domain.Company{Name: f.CompanyName}
	}
	return u
}
