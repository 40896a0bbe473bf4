// Package view holds the templ components for pages and Datastar fragments.
package view

import (
	"encoding/json"
	"strconv"

	"github.com/msomdec/limur-users/internal/domain"
	"github.com/msomdec/limur-users/internal/service"
)

// FetchErrorMessage is shown when the remote list could not be loaded.
const FetchErrorMessage = "Błąd pobierania danych"

// SuccessMessage is shown once a user has been added.
const SuccessMessage = "Użytkownik został pomyślnie dodany!"

const deleteConfirm = "Czy na pewno chcesz usunąć tego użytkownika?"

// AddState selects the banner or modal shown with the add-user form.
type AddState int

const (
	AddIdle    AddState = iota
	AddConfirm          // confirmation modal after a successful add
	AddDone             // success banner once the modal was dismissed
)

type formField struct {
	name        string
	label       string
	placeholder string
	required    bool
	value       func(service.UserForm) string
}

type formSection struct {
	legend string
	hint   string
	fields []formField
}

var addUserSections = []formSection{
	{legend: "Informacje osobowe", fields: []formField{
		{"name", "Imię i nazwisko", "Jan Kowalski", true, func(f service.UserForm) string { return f.Name }},
		{"username", "Nazwa użytkownika", "jankowalski", true, func(f service.UserForm) string { return f.Username }},
		{"email", "Email", "jan@example.com", true, func(f service.UserForm) string { return f.Email }},
		{"phone", "Telefon", "+48 123 456 789", true, func(f service.UserForm) string { return f.Phone }},
	}},
	{legend: "Adres", fields: []formField{
		{"street", "Ulica", "ul. Główna", true, func(f service.UserForm) string { return f.Street }},
		{"suite", "Numer lokalu", "nr 42", false, func(f service.UserForm) string { return f.Suite }},
		{"city", "Miasto", "Warszawa", true, func(f service.UserForm) string { return f.City }},
		{"zipcode", "Kod pocztowy", "00-000", true, func(f service.UserForm) string { return f.Zipcode }},
	}},
	{legend: "Firma (opcjonalnie)", hint: "To pole jest opcjonalne", fields: []formField{
		{"companyName", "Nazwa firmy", "Nazwa Twojej firmy", false, func(f service.UserForm) string { return f.CompanyName }},
	}},
}

func sortValue(desc bool) string {
	if desc {
		return "desc"
	}
	return "asc"
}

func sortArrow(desc bool) string {
	if desc {
		return "▲"
	}
	return "▼"
}

// tableSignals seeds the search and sort signals of the users page.
func tableSignals(search string, desc bool) string {
	signals, _ := json.Marshal(map[string]string{"search": search, "sort": sortValue(desc)})
	return string(signals)
}

func rowID(u domain.User) string {
	return "user-" + strconv.FormatInt(u.ID, 10)
}

func modalAction(id int64) string {
	return "@get('/users/" + strconv.FormatInt(id, 10) + "/modal')"
}

func deleteAction(id int64) string {
	return "confirm('" + deleteConfirm + "') && @delete('/users/" + strconv.FormatInt(id, 10) + "')"
}
