package settings

import (
	"context"
	"fmt"
	"sync"

	"company-manager/core/backend"
	"company-manager/core/reconcile"
	"company-manager/feature/companies"
)

// stubPortal keeps the selection in memory like the portal's cookie.
type stubPortal struct {
	mu      sync.Mutex
	known   map[string]reconcile.Company
	active  *reconcile.Company
	err     error
	selects int
}

func newStubPortal(list ...reconcile.Company) *stubPortal {
	p := &stubPortal{known: make(map[string]reconcile.Company)}
	for _, c := range list {
		p.known[c.ID] = c
	}
	return p
}

func (p *stubPortal) ActiveCompany(context.Context) (*reconcile.Company, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return p.active, nil
}

func (p *stubPortal) SelectCompany(_ context.Context, id string) (*reconcile.Company, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.selects++
	c, ok := p.known[id]
	if !ok {
		return nil, &backend.APIError{StatusCode: 404, Detail: "Empresa não encontrada"}
	}
	p.active = &c
	return &c, nil
}

func (p *stubPortal) ClearSelection(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.active = nil
	return nil
}

func (p *stubPortal) Selects() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selects
}

// stubCatalogue returns a fixed, already name-sorted catalogue.
type stubCatalogue struct {
	companies []reconcile.Company
	err       error
}

func (c *stubCatalogue) Catalogue(context.Context) ([]reconcile.Company, error) {
	return c.companies, c.err
}

func (c *stubCatalogue) FindByID(_ context.Context, id string) (*reconcile.Company, error) {
	if c.err != nil {
		return nil, c.err
	}
	for i := range c.companies {
		if c.companies[i].ID == id {
			return &c.companies[i], nil
		}
	}
	return nil, fmt.Errorf("company %s: %w", id, companies.ErrNotFound)
}

func sample() []reconcile.Company {
	return []reconcile.Company{
		{ID: "a1", Code: 2, ShortName: "Acme"},
		{ID: "b2", Code: 1, ShortName: "Beta"},
	}
}
