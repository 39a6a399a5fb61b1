package catalog

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
	"github.com/naijagasonline/ngo-storefront/pkg/gateway"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
)

// ListFilter narrows List. Query matches title, seller, kg, state and city.
type ListFilter struct {
	Query string
	Kg    string
}

// Service reads the product catalog through the gateway.
type Service struct {
	gw   gateway.Gateway
	logg *logger.Logger
}

func NewService(gw gateway.Gateway, logg *logger.Logger) (*Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("gateway required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{gw: gw, logg: logg}, nil
}

// List returns products ordered by title, optionally filtered.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	rows, err := s.gw.QueryRows(ctx, gateway.TableProducts, gateway.Filter{OrderBy: "title"})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load products")
	}
	products := s.decode(ctx, rows)

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	kg := strings.TrimSpace(filter.Kg)
	if q == "" && kg == "" {
		return products, nil
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if kg != "" && strings.TrimSpace(p.Kg) != kg {
			continue
		}
		if q != "" && !matches(p, q) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Get loads a single product.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	rows, err := s.gw.QueryRows(ctx, gateway.TableProducts, gateway.Filter{
		Eq:    map[string]any{"id": id},
		Limit: 1,
	})
	if err != nil {
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load product")
	}
	if len(rows) == 0 {
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	p, err := productFromRow(rows[0])
	if err != nil {
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "malformed product")
	}
	return p, nil
}

// Addons resolves the product's add-ons, from its own addons column or else
// the product_addons relation. Lookups after the product itself are best
// effort: failures yield no add-ons.
func (s *Service) Addons(ctx context.Context, id string) ([]Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := p.AddonIDs
	if len(ids) == 0 {
		rel, err := s.gw.QueryRows(ctx, gateway.TableProductAddons, gateway.Filter{
			Eq: map[string]any{"product_id": p.ID},
		})
		if err != nil {
			s.logg.WarnErr(s.logg.WithField(ctx, "product_id", p.ID), "load product addons relation", err)
			return []Product{}, nil
		}
		for _, row := range rel {
			if addon := row.String("addon_id"); addon != "" {
				ids = append(ids, addon)
			}
		}
	}
	if len(ids) == 0 {
		return []Product{}, nil
	}

	in := make([]any, len(ids))
	for i, v := range ids {
		in[i] = v
	}
	rows, err := s.gw.QueryRows(ctx, gateway.TableProducts, gateway.Filter{
		In:      map[string][]any{"id": in},
		OrderBy: "title",
	})
	if err != nil {
		s.logg.WarnErr(s.logg.WithField(ctx, "product_id", p.ID), "load addon products", err)
		return []Product{}, nil
	}
	return s.decode(ctx, rows), nil
}

// Categories returns the distinct trimmed kg sizes in title order.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	products, err := s.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range products {
		kg := strings.TrimSpace(p.Kg)
		if kg == "" {
			continue
		}
		if _, ok := seen[kg]; ok {
			continue
		}
		seen[kg] = struct{}{}
		out = append(out, kg)
	}
	return out, nil
}

func (s *Service) decode(ctx context.Context, rows []gateway.Row) []Product {
	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		p, err := productFromRow(row)
		if err != nil {
			s.logg.WarnErr(ctx, "skipping product row", err)
			continue
		}
		out = append(out, p)
	}
	return out
}

func matches(p Product, q string) bool {
	for _, field := range []string{p.Title, p.SellerName, p.Kg, p.State, p.City} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
