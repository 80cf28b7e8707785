package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"company-manager/core/reconcile"
	"company-manager/core/utils"

	"go.uber.org/zap"
)

// wireCompany mirrors a company object in the portal's JSON. The portal is
// loose about types, so id and codigo may arrive as numbers or strings.
type wireCompany struct {
	ID        any    `json:"id"`
	Code      any    `json:"codigo"`
	ShortName string `json:"nome_abreviado"`
	LegalName string `json:"razao_social"`
	CNPJ      string `json:"cnpj"`
	City      string `json:"cidade"`
	State     string `json:"uf"`
	Active    any    `json:"ativo"`
}

type listResponse struct {
	Items *[]wireCompany `json:"items"`
	Total any            `json:"total"`
}

func (w wireCompany) record() (reconcile.Company, error) {
	code, err := utils.ToInt64(w.Code)
	if err != nil {
		return reconcile.Company{}, fmt.Errorf("invalid codigo: %w", err)
	}

	c := reconcile.Company{
		ID:        idString(w.ID),
		Code:      code,
		ShortName: w.ShortName,
		LegalName: w.LegalName,
		CNPJ:      w.CNPJ,
		City:      w.City,
		State:     w.State,
	}
	if w.Active != nil {
		active := utils.ToBool(w.Active)
		c.Active = &active
	}
	return c, nil
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

// ListCompanies fetches one page of the company listing. A body without an
// items array is ErrMalformedResponse; items with an unusable codigo are
// dropped. A missing or invalid total reads as 0.
func (c *Client) ListCompanies(ctx context.Context, q reconcile.Query) (*reconcile.Page, error) {
	params := url.Values{}
	params.Set("skip", strconv.Itoa(q.Skip))
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.Search != "" {
		params.Set("search", q.Search)
	}

	var body listResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: c.cfg.CompaniesPath, query: params}, &body); err != nil {
		return nil, err
	}
	if body.Items == nil {
		return nil, fmt.Errorf("%w: items missing", ErrMalformedResponse)
	}

	page := &reconcile.Page{Items: make([]reconcile.Company, 0, len(*body.Items))}
	for i, w := range *body.Items {
		rec, err := w.record()
		if err != nil {
			c.logger.Warn("Skipping company with invalid code",
				zap.Int("index", i), zap.Any("codigo", w.Code), zap.Error(err))
			continue
		}
		page.Items = append(page.Items, rec)
	}

	if body.Total != nil {
		if total, err := utils.ToInt64(body.Total); err == nil && total > 0 {
			page.Total = int(total)
		}
	}
	return page, nil
}
