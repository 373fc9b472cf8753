package providers

import (
	"strings"

	"github.com/prodataworld/prodata-backend/internal/fulfillment"
	"github.com/prodataworld/prodata-backend/pkg/config"
)

// Set is every vendor client the process could build from configuration.
type Set struct {
	Providers []fulfillment.Provider
	Pollers   []fulfillment.StatusPoller
	// Skipped names vendors left out for missing credentials.
	Skipped []string
}

// Poller returns the status poller registered under name.
func (s Set) Poller(name string) (fulfillment.StatusPoller, bool) {
	for _, p := range s.Pollers {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// FromConfig builds the configured vendors. Vendors without credentials are
// skipped rather than failing startup.
func FromConfig(cfg *config.Config, opts ...Option) Set {
	var set Set

	if strings.TrimSpace(cfg.Foster.APIKey) != "" {
		if foster, err := NewFoster(cfg.Foster, opts...); err == nil {
			set.Providers = append(set.Providers, foster)
			set.Pollers = append(set.Pollers, foster)
		}
	} else {
		set.Skipped = append(set.Skipped, fulfillment.ProviderFoster)
	}

	if jaybart, err := NewJaybart(cfg.Jaybart, opts...); err == nil {
		set.Providers = append(set.Providers, jaybart)
		set.Pollers = append(set.Pollers, jaybart)
	} else {
		set.Skipped = append(set.Skipped, fulfillment.ProviderJaybart)
	}

	if codecraft, err := NewCodeCraft(cfg.CodeCraft, opts...); err == nil {
		set.Providers = append(set.Providers, codecraft)
		set.Pollers = append(set.Pollers, codecraft)
	} else {
		set.Skipped = append(set.Skipped, fulfillment.ProviderCodeCraft)
	}

	if jesco, err := NewJesco(cfg.Jesco, opts...); err == nil {
		set.Providers = append(set.Providers, jesco)
	} else {
		set.Skipped = append(set.Skipped, fulfillment.ProviderJesco)
	}

	return set
}
