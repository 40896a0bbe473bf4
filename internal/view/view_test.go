package view_test

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/msomdec/limur-users/internal/domain"
	"github.com/msomdec/limur-users/internal/service"
	"github.com/msomdec/limur-users/internal/view"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	if err := c.Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return sb.String()
}

func assertContains(t *testing.T, html string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(html, w) {
			t.Errorf("expected output to contain %q", w)
		}
	}
}

func testUser() domain.User {
	return domain.User{
		ID:       7,
		Name:     "Jan Kowalski",
		Username: "jankowalski",
		Email:    "jan@example.com",
		Phone:    "+48 123 456 789",
		Website:  "jan.pl",
		Address:  domain.Address{Street: "ul. Główna", Suite: "nr 42", City: "Warszawa", Zipcode: "00-001"},
		Company:  &domain.Company{Name: "Limur", CatchPhrase: "Zawsze razem"},
	}
}

func TestHomePage(t *testing.T) {
	html := render(t, view.HomePage())
	assertContains(t, html, `<!doctype html>`, `id="home"`, `href="/users"`, `href="/users/add"`, "datastar.js")
}

func TestUsersTable(t *testing.T) {
	html := render(t, view.UsersTable([]domain.User{testUser()}, false))

	assertContains(t, html,
		`id="users-table"`,
		`id="user-7"`,
		"Jan Kowalski",
		"ul. Główna, nr 42<br>00-001 Warszawa",
		"@get(&#39;/users/7/modal&#39;)",
		"@delete(&#39;/users/7&#39;)",
	)
	if strings.Contains(html, "Brak użytkowników") {
		t.Error("did not expect the empty state with one user")
	}
}

func TestUsersTable_Empty(t *testing.T) {
	html := render(t, view.UsersTable(nil, true))
	assertContains(t, html, "Brak użytkowników spełniających kryteria wyszukiwania.", "▲")
}

func TestUsersTable_EscapesUserData(t *testing.T) {
	u := testUser()
	u.Name = `<script>alert("x")</script>`

	html := render(t, view.UsersTable([]domain.User{u}, false))

	if strings.Contains(html, "<script>alert") {
		t.Fatal("user data must be escaped")
	}
	assertContains(t, html, "&lt;script&gt;")
}

func TestUsersPage(t *testing.T) {
	html := render(t, view.UsersPage([]domain.User{testUser()}, "Warsz", true, false))

	assertContains(t, html, `id="users-table"`, `id="modal"`, `value="Warsz"`, "data-signals", "&#34;sort&#34;:&#34;desc&#34;")
	if strings.Contains(html, view.FetchErrorMessage) {
		t.Error("did not expect the fetch error without a failure")
	}
}

func TestUsersPage_FetchFailed(t *testing.T) {
	html := render(t, view.UsersPage([]domain.User{testUser()}, "", false, true))
	assertContains(t, html, view.FetchErrorMessage, `action="/users/reload"`, "Jan Kowalski")
}

func TestUserModal(t *testing.T) {
	html := render(t, view.UserModal(testUser()))
	assertContains(t, html, `id="modal"`, "Szczegóły użytkownika", "jan.pl", "Limur", "Zawsze razem", "/users/modal/close")
}

func TestUserModal_WithoutCompany(t *testing.T) {
	u := testUser()
	u.Company = nil

	html := render(t, view.UserModal(u))
	if strings.Contains(html, "Firma") {
		t.Error("did not expect a company section")
	}
}

func TestAddUserPage_Errors(t *testing.T) {
	form := service.UserForm{Name: "Jan", Email: "zły"}
	errs := service.FieldErrors{"email": "Email jest niepoprawny"}

	html := render(t, view.AddUserPage(form, errs, view.AddIdle))

	assertContains(t, html, `value="Jan"`, `value="zły"`, `id="email-error"`, "Email jest niepoprawny")
	if strings.Contains(html, `id="confirmation"`) || strings.Contains(html, `id="add-success"`) {
		t.Error("did not expect confirmation or success banner")
	}
}

func TestAddUserPage_States(t *testing.T) {
	confirm := render(t, view.AddUserPage(service.UserForm{}, nil, view.AddConfirm))
	assertContains(t, confirm, `id="confirmation"`, "Zostań tutaj", "Przejdź do listy", `href="/users/add?added=1"`)

	done := render(t, view.AddUserPage(service.UserForm{}, nil, view.AddDone))
	assertContains(t, done, `id="add-success"`, view.SuccessMessage)
}
