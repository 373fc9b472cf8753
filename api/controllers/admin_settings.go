package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/prodataworld/prodata-backend/api/responses"
	"github.com/prodataworld/prodata-backend/api/validators"
	"github.com/prodataworld/prodata-backend/internal/fulfillment"
	"github.com/prodataworld/prodata-backend/internal/settings"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"github.com/prodataworld/prodata-backend/pkg/logger"
)

// PusherSettings reads and toggles provider feature flags.
type PusherSettings interface {
	Enabled(ctx context.Context, key string, fallback bool) (bool, error)
	SetEnabled(ctx context.Context, key string, enabled bool) error
}

var knownPushers = []string{
	fulfillment.ProviderJaybart,
	fulfillment.ProviderFoster,
	fulfillment.ProviderCodeCraft,
	fulfillment.ProviderJesco,
}

type pusherView struct {
	Provider string `json:"provider"`
	Key      string `json:"key"`
	Enabled  bool   `json:"enabled"`
}

type pusherUpdateRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func AdminPushersList(svc PusherSettings, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		out := make([]pusherView, 0, len(knownPushers))
		for _, provider := range knownPushers {
			key := settings.PusherKey(provider)
			enabled, err := svc.Enabled(r.Context(), key, settings.PusherEnabledByDefault)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			out = append(out, pusherView{Provider: provider, Key: key, Enabled: enabled})
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminPusherUpdate switches automatic pushing to one provider on or off.
func AdminPusherUpdate(svc PusherSettings, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		provider := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "provider")))
		if !isKnownPusher(provider) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "unknown provider"))
			return
		}
		var payload pusherUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		key := settings.PusherKey(provider)
		if err := svc.SetEnabled(r.Context(), key, *payload.Enabled); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithFields(logg.WithProvider(r.Context(), provider), map[string]any{"enabled": *payload.Enabled}), "pusher flag updated")
		}
		responses.WriteMessage(w, http.StatusOK, "Pusher setting updated", pusherView{Provider: provider, Key: key, Enabled: *payload.Enabled})
	}
}

func isKnownPusher(provider string) bool {
	for _, candidate := range knownPushers {
		if candidate == provider {
			return true
		}
	}
	return false
}
