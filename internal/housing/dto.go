// AngelaMos | 2026
// dto.go

package housing

import (
	"fmt"
	"net/http"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

// equalityFilters maps query parameters to the columns they must equal.
var equalityFilters = map[string]string{
	"houseSecd":          "house_secd",
	"houseSecdNm":        "house_secd_nm",
	"houseDtlSecd":       "house_dtl_secd",
	"rentSecd":           "rent_secd",
	"subscrptAreaCodeNm": "subscrpt_area_code_nm",
	"parcprcUlsAt":       "parcprc_uls_at",
	"specltRdnEarthAt":   "speclt_rdn_earth_at",
}

var sortColumns = map[string]string{
	"rcritPblancDe":     "rcrit_pblanc_de",
	"rceptBgnde":        "rcept_bgnde",
	"rceptEndde":        "rcept_endde",
	"przwnerPresnatnDe": "przwner_presnatn_de",
	"totSuplyHshldco":   "tot_suply_hshldco",
	"houseName":         "house_nm",
	"collectedAt":       "collected_at",
	"createdAt":         "created_at",
	"updatedAt":         "updated_at",
}

const defaultSort = "rcritPblancDe"

type ListParams struct {
	core.ListParams
	// Equal holds column/value pairs; keys are column names.
	Equal             map[string]string
	RcritPblancDeFrom *Date
	RcritPblancDeTo   *Date
	RceptBgndeFrom    *Date
	RceptBgndeTo      *Date
	IncludeHidden     bool
}

func (p ListParams) where() core.Where {
	var w core.Where

	if !p.IncludeHidden {
		w.Raw("is_hidden = false")
	}
	if p.Search != "" {
		w.ILike(p.Search, "house_nm", "hssply_adres", "pblanc_no", "house_manage_no")
	}
	for _, param := range filterOrder {
		column := equalityFilters[param]
		if v, ok := p.Equal[column]; ok && v != "" {
			w.Eq(column, v)
		}
	}
	if p.RcritPblancDeFrom != nil {
		w.Gte("rcrit_pblanc_de", *p.RcritPblancDeFrom)
	}
	if p.RcritPblancDeTo != nil {
		w.Lte("rcrit_pblanc_de", *p.RcritPblancDeTo)
	}
	if p.RceptBgndeFrom != nil {
		w.Gte("rcept_bgnde", *p.RceptBgndeFrom)
	}
	if p.RceptBgndeTo != nil {
		w.Lte("rcept_bgnde", *p.RceptBgndeTo)
	}

	return w
}

// filterOrder fixes the placeholder order of equality filters.
var filterOrder = []string{
	"houseSecd", "houseSecdNm", "houseDtlSecd", "rentSecd",
	"subscrptAreaCodeNm", "parcprcUlsAt", "specltRdnEarthAt",
}

// ParseListParams reads list filters from the query string. Malformed dates
// are rejected.
func ParseListParams(r *http.Request) (ListParams, error) {
	q := r.URL.Query()
	p := ListParams{
		ListParams:    core.ParseListParams(r),
		Equal:         make(map[string]string),
		IncludeHidden: q.Get("isHidden") == "true",
	}

	for param, column := range equalityFilters {
		if v := q.Get(param); v != "" {
			p.Equal[column] = v
		}
	}

	ranges := []struct {
		param  string
		target **Date
	}{
		{"rcritPblancDeFrom", &p.RcritPblancDeFrom},
		{"rcritPblancDeTo", &p.RcritPblancDeTo},
		{"rceptBgndeFrom", &p.RceptBgndeFrom},
		{"rceptBgndeTo", &p.RceptBgndeTo},
	}
	for _, rg := range ranges {
		raw := q.Get(rg.param)
		if raw == "" {
			continue
		}
		d, err := ParseDate(raw)
		if err != nil {
			return p, fmt.Errorf("%s must be YYYY-MM-DD: %w", rg.param, core.ErrInvalidInput)
		}
		*rg.target = &d
	}

	return p, nil
}
