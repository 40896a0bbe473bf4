package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/limur-users/internal/view"
)

// HandleHome renders the home page. Unknown paths fall back to it.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	if err := view.HomePage().Render(r.Context(), w); err != nil {
		slog.Error("render home", "error", err)
	}
}
