package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/limur-users/internal/domain"
	"github.com/msomdec/limur-users/internal/service"
	"github.com/msomdec/limur-users/internal/view"
	datastar "github.com/starfederation/datastar-go/datastar"
)

// addAttempts bounds retries when a drawn id is taken between NewID and Add.
const addAttempts = 3

// UserHandler serves the user list, detail modal and add-user form.
type UserHandler struct {
	stores *service.UserStores
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(stores *service.UserStores) *UserHandler {
	return &UserHandler{stores: stores}
}

// tableSignals are the Datastar signals driving the users table.
type tableSignals struct {
	Search string `json:"search"`
	Sort   string `json:"sort"`
}

func (s tableSignals) order() service.SortOrder {
	return service.ParseSortOrder(s.Sort)
}

// HandleList renders the users page. Query parameters search and sort
// mirror the Datastar signals for requests made without scripts.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	store := h.stores.Get(r.Context(), ProfileFromContext(r.Context()))

	search := r.URL.Query().Get("search")
	order := service.ParseSortOrder(r.URL.Query().Get("sort"))
	users := service.ListUsers(store.Users(), search, order)

	page := view.UsersPage(users, search, order == service.SortDesc, store.Err() != nil)
	if err := page.Render(r.Context(), w); err != nil {
		slog.Error("render users page", "error", err)
	}
}

// HandleTable re-renders the users table from the current signals.
func (h *UserHandler) HandleTable(w http.ResponseWriter, r *http.Request) {
	var signals tableSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	store := h.stores.Get(r.Context(), ProfileFromContext(r.Context()))
	users := service.ListUsers(store.Users(), signals.Search, signals.order())

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(
		view.UsersTable(users, signals.order() == service.SortDesc),
		datastar.WithSelectorID("users-table"),
	)
}

// HandleModal opens the detail modal for one user.
func (h *UserHandler) HandleModal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	user, err := h.stores.Get(r.Context(), ProfileFromContext(r.Context())).Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("get user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.UserModal(user), datastar.WithSelectorID("modal"))
}

// HandleCloseModal empties the modal container.
func (h *UserHandler) HandleCloseModal(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.EmptyModal(), datastar.WithSelectorID("modal"))
}

// HandleDelete removes a user, then re-renders the table and closes the modal.
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var signals tableSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	store := h.stores.Get(r.Context(), ProfileFromContext(r.Context()))
	if err := store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("delete user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("user deleted", "id", id)

	users := service.ListUsers(store.Users(), signals.Search, signals.order())

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(
		view.UsersTable(users, signals.order() == service.SortDesc),
		datastar.WithSelectorID("users-table"),
	)
	sse.PatchElementTempl(view.EmptyModal(), datastar.WithSelectorID("modal"))
}

// HandleReload re-runs the store load, retrying a failed remote fetch.
func (h *UserHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	// A failure is recorded on the store and shown by the list page.
	_ = h.stores.Reload(r.Context(), ProfileFromContext(r.Context()))
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// HandleNew renders the add-user form.
func (h *UserHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	state := view.AddIdle
	switch {
	case r.URL.Query().Get("confirm") == "1":
		state = view.AddConfirm
	case r.URL.Query().Get("added") == "1":
		state = view.AddDone
	}

	if err := view.AddUserPage(service.UserForm{}, nil, state).Render(r.Context(), w); err != nil {
		slog.Error("render add user page", "error", err)
	}
}

// HandleCreate validates the form and adds the user to the profile's
// local additions.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := service.UserForm{
		Name:        r.FormValue("name"),
		Username:    r.FormValue("username"),
		Email:       r.FormValue("email"),
		Phone:       r.FormValue("phone"),
		Street:      r.FormValue("street"),
		Suite:       r.FormValue("suite"),
		City:        r.FormValue("city"),
		Zipcode:     r.FormValue("zipcode"),
		CompanyName: r.FormValue("companyName"),
	}

	if err := form.Validate(); err != nil {
		var fieldErrs service.FieldErrors
		if !errors.As(err, &fieldErrs) {
			slog.Error("validate user form", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		if err := view.AddUserPage(form, fieldErrs, view.AddIdle).Render(r.Context(), w); err != nil {
			slog.Error("render add user page", "error", err)
		}
		return
	}

	store := h.stores.Get(r.Context(), ProfileFromContext(r.Context()))
	var err error
	for range addAttempts {
		user := form.User(store.NewID())
		if err = store.Add(r.Context(), user); !errors.Is(err, domain.ErrDuplicateID) {
			break
		}
	}
	if err != nil {
		slog.Error("add user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/users/add?confirm=1", http.StatusSeeOther)
}
