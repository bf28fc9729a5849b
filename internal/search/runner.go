// Package search dispatches queries to the configured backend: the direct
// Grok client, or a host-managed provider when use_builtin_provider is set.
package search

import (
	"context"
	"reflect"
	"sync"

	"github.com/grokscout/grokscout/internal/config"
	"github.com/grokscout/grokscout/internal/grok"
	"github.com/grokscout/grokscout/internal/provider"
)

type Runner struct {
	store *config.Store

	mu      sync.Mutex
	client  *grok.Client
	lastCfg grok.Config
}

func NewRunner(store *config.Store) *Runner {
	return &Runner{store: store}
}

// Run executes one search. The backend is selected per call so settings
// changes take effect without a restart. Configuration errors surface as
// failed Results, as the API contract requires.
func (r *Runner) Run(ctx context.Context, query string) *grok.Result {
	settings, err := r.store.Effective()
	if err != nil {
		return &grok.Result{
			Query:     query,
			Sources:   []grok.Source{},
			ErrorCode: grok.ErrMissingConfig,
			Detail:    err.Error(),
		}
	}

	if settings.UseBuiltinProvider {
		p, err := provider.New(provider.Config{
			Provider: settings.Provider,
			APIKey:   settings.APIKey,
			Model:    settings.Model,
			BaseURL:  settings.BaseURL,
		})
		if err != nil {
			return &grok.Result{
				Query:     query,
				Sources:   []grok.Source{},
				ErrorCode: grok.ErrMissingConfig,
				Detail:    err.Error(),
			}
		}
		return provider.SearchWith(ctx, p, query, settings.CustomSystemPrompt)
	}

	return r.directClient(settings.SearchConfig()).Search(ctx, query)
}

// Settings exposes the effective settings for callers that render output.
func (r *Runner) Settings() config.Settings {
	settings, err := r.store.Effective()
	if err != nil {
		return r.store.Get()
	}
	return settings
}

// directClient reuses one client across calls while the config is stable,
// keeping connection pooling effective when reuse_session is on.
func (r *Runner) directClient(cfg grok.Config) *grok.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil || !reflect.DeepEqual(cfg, r.lastCfg) {
		r.client = grok.New(cfg)
		r.lastCfg = cfg
	}
	return r.client
}
