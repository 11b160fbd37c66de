package scheduling

import (
	"fmt"

	"github.com/wolfman30/patient-scheduler/internal/locale"
	"github.com/wolfman30/patient-scheduler/internal/templates"
)

// Session carries the per-chat inputs of a controller.
type Session struct {
	ID            string
	Locale        string
	Identity      Identity
	Emit          func(Message)
	OnPhaseChange func(Phase)
}

// Factory builds controllers that share one resolver, submitter, catalog
// and metrics set.
type Factory struct {
	base Config
}

// NewFactory checks the shared dependencies in base. Per-session fields of
// base are ignored.
func NewFactory(base Config) (*Factory, error) {
	if base.Resolver == nil {
		return nil, fmt.Errorf("%w: time resolver", ErrMissingDependency)
	}
	if base.Submitter == nil {
		return nil, fmt.Errorf("%w: submitter", ErrMissingDependency)
	}
	if base.Catalog == nil {
		base.Catalog = locale.NewCatalog(base.Locale)
	}
	if base.Renderer == nil {
		base.Renderer = &templates.Renderer{}
	}
	base.SessionID = ""
	base.Identity = Identity{}
	base.Emit = nil
	base.OnPhaseChange = nil
	return &Factory{base: base}, nil
}

// New returns an idle controller for one chat session. An empty locale
// selects the factory's default language.
func (f *Factory) New(s Session) (*Controller, error) {
	cfg := f.base
	cfg.SessionID = s.ID
	cfg.Identity = s.Identity
	cfg.Emit = s.Emit
	cfg.OnPhaseChange = s.OnPhaseChange
	if s.Locale != "" {
		cfg.Locale = s.Locale
	}
	return NewController(cfg)
}

// Catalog is the shared copy catalog.
func (f *Factory) Catalog() *locale.Catalog {
	return f.base.Catalog
}
