package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/relayvoice/callbridge/pkg/core"
	"github.com/relayvoice/callbridge/pkg/telephony"
)

// ConfigureProviderHandler serves POST /configure-provider, the single
// administrative entry point swapping the active telephony provider.
type ConfigureProviderHandler struct {
	Providers *telephony.Selector
	Logger    *slog.Logger
}

func (h ConfigureProviderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("provider_name"))
	if name == "" {
		if err := r.ParseForm(); err == nil {
			name = strings.TrimSpace(r.PostForm.Get("provider_name"))
		}
	}
	if name == "" {
		writeError(w, r, core.NewValidationError("'provider_name' is required", "provider_name"))
		return
	}

	if err := h.Providers.Configure(name); err != nil {
		writeError(w, r, err)
		return
	}

	h.Logger.Info("telephony provider changed", "provider", name)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Provider changed to %s", name),
	})
}
