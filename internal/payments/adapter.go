package payments

import (
	"context"

	"busly/internal/shared/errs"
)

// InitiateResult is what an adapter returns after opening a transaction
// with its provider.
type InitiateResult struct {
	RedirectURL  string
	ProviderTxID string
}

// CallbackResult is an adapter's reading of one callback or return
// request. Verified means the signature checked out; nothing else in the
// struct is trustworthy when it is false.
type CallbackResult struct {
	Verified     bool
	ProviderTxID string
	Amount       int64
	Succeeded    bool
	RawStatus    string
}

// Adapter hides one provider's wire protocol behind a uniform surface.
type Adapter interface {
	Name() string
	Initiate(ctx context.Context, payment *Payment, returnURL string) (*InitiateResult, error)
	VerifyCallback(params map[string]string) CallbackResult
}

// Registry resolves adapters by provider name.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

func (r *Registry) Get(name string) (Adapter, error) {
	adapter, ok := r.adapters[name]
	if !ok {
		return nil, errs.ErrProviderUnknown
	}
	return adapter, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
