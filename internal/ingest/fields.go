// AngelaMos | 2026
// fields.go

package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
	"github.com/byzip-v2/byzip-backend-v2/internal/housing"
)

// Item is one decoded record from the public data API.
type Item map[string]any

// first returns the first candidate whose value is present and non-empty.
func (it Item) first(keys ...string) (any, bool) {
	for _, k := range keys {
		v, ok := it[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func (it Item) String(keys ...string) *string {
	v, ok := it.first(keys...)
	if !ok {
		return nil
	}

	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		return nil
	}
	return &s
}

func (it Item) Float(keys ...string) *float64 {
	v, ok := it.first(keys...)
	if !ok {
		return nil
	}

	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case float64:
		f = t
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return &f
}

func (it Item) Int(keys ...string) *int {
	f := it.Float(keys...)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

func (it Item) Date(keys ...string) *housing.Date {
	s := it.String(keys...)
	if s == nil {
		return nil
	}
	return ParseSourceDate(*s)
}

// ParseSourceDate accepts YYYY-MM-DD, YYYYMMDD and YYYYMM (first of the
// month). Anything else, including the literal "null", yields nil.
func ParseSourceDate(s string) *housing.Date {
	s = strings.TrimSpace(s)

	var layout string
	switch len(s) {
	case 10:
		layout = housing.DateLayout
	case 8:
		layout = "20060102"
	case 6:
		layout = "200601"
	default:
		return nil
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return nil
	}
	return &housing.Date{Time: t}
}

// PblancNo is the natural key of an item.
func (it Item) PblancNo() string {
	if s := it.String("PBLANC_NO", "pblancNo"); s != nil {
		return *s
	}
	return ""
}

func (it Item) Address() string {
	if s := it.String("HSSPLY_ADRES", "hssplyAdres"); s != nil {
		return *s
	}
	return ""
}

type binding struct {
	target any
	keys   []string
}

func fields(s *housing.Supply) []binding {
	return []binding{
		{&s.HouseManageNo, []string{"HOUSE_MANAGE_NO", "houseManageNo"}},
		{&s.HouseName, []string{"HOUSE_NM", "houseName", "houseNm"}},
		{&s.HouseSecd, []string{"HOUSE_SECD", "houseSecd"}},
		{&s.HouseSecdNm, []string{"HOUSE_SECD_NM", "houseSecdNm"}},
		{&s.HouseDtlSecd, []string{"HOUSE_DTL_SECD", "houseDtlSecd"}},
		{&s.HouseDtlSecdNm, []string{"HOUSE_DTL_SECD_NM", "houseDtlSecdNm"}},
		{&s.RentSecd, []string{"RENT_SECD", "rentSecd"}},
		{&s.RentSecdNm, []string{"RENT_SECD_NM", "rentSecdNm"}},
		{&s.SubscrptAreaCode, []string{"SUBSCRPT_AREA_CODE", "subscrptAreaCode"}},
		{&s.SubscrptAreaCodeNm, []string{"SUBSCRPT_AREA_CODE_NM", "subscrptAreaCodeNm"}},
		{&s.HssplyZip, []string{"HSSPLY_ZIP", "hssplyZip"}},
		{&s.HssplyAdres, []string{"HSSPLY_ADRES", "hssplyAdres"}},

		{&s.Latitude, []string{"LATITUDE", "latitude"}},
		{&s.Longitude, []string{"LONGITUDE", "longitude"}},
		{&s.TotSuplyHshldco, []string{"TOT_SUPLY_HSHLDCO", "totSuplyHshldco"}},

		{&s.RcritPblancDe, []string{"RCRIT_PBLANC_DE", "rcritPblancDe"}},
		{&s.RceptBgnde, []string{"RCEPT_BGNDE", "rceptBgnde", "SUBSCRPT_RCEPT_BGNDE", "subscrptRceptBgnde"}},
		{&s.RceptEndde, []string{"RCEPT_ENDDE", "rceptEndde", "SUBSCRPT_RCEPT_ENDDE", "subscrptRceptEndde"}},
		{&s.SpsplyRceptBgnde, []string{"SPSPLY_RCEPT_BGNDE", "spsplyRceptBgnde"}},
		{&s.SpsplyRceptEndde, []string{"SPSPLY_RCEPT_ENDDE", "spsplyRceptEndde"}},
		{&s.PrzwnerPresnatnDe, []string{"PRZWNER_PRESNATN_DE", "przwnerPresnatnDe"}},
		{&s.CntrctCnclsBgnde, []string{"CNTRCT_CNCLS_BGNDE", "cntrctCnclsBgnde"}},
		{&s.CntrctCnclsEndde, []string{"CNTRCT_CNCLS_ENDDE", "cntrctCnclsEndde"}},
		{&s.MvnPrearngeYm, []string{"MVN_PREARNGE_YM", "mvnPrearngeYm"}},

		{&s.HmpgAdres, []string{"HMPG_ADRES", "hmpgAdres"}},
		{&s.PblancURL, []string{"PBLANC_URL", "pblancUrl"}},
		{&s.MdhsTelno, []string{"MDHS_TELNO", "mdhsTelno"}},
		{&s.CnstrctEntrpsNm, []string{"CNSTRCT_ENTRPS_NM", "cnstrctEntrpsNm"}},
		{&s.BsnsMbyNm, []string{"BSNS_MBY_NM", "bsnsMbyNm"}},
		{&s.NsprcNm, []string{"NSPRC_NM", "nsprcNm"}},

		{&s.SpecltRdnEarthAt, []string{"SPECLT_RDN_EARTH_AT", "specltRdnEarthAt"}},
		{&s.MdatTrgetAreaSecd, []string{"MDAT_TRGET_AREA_SECD", "mdatTrgetAreaSecd"}},
		{&s.ParcprcUlsAt, []string{"PARCPRC_ULS_AT", "parcprcUlsAt"}},
		{&s.ImprmnBsnsAt, []string{"IMPRMN_BSNS_AT", "imprmnBsnsAt"}},
		{&s.PublicHouseEarthAt, []string{"PUBLIC_HOUSE_EARTH_AT", "publicHouseEarthAt"}},
		{&s.LrsclBldlndAt, []string{"LRSCL_BLDLND_AT", "lrsclBldlndAt"}},
		{&s.NplnPrvoprPublicHouseAt, []string{"NPLN_PRVOPR_PUBLIC_HOUSE_AT", "nplnPrvoprPublicHouseAt"}},
		{&s.PublicHouseSpclwApplcAt, []string{"PUBLIC_HOUSE_SPCLW_APPLC_AT", "publicHouseSpclwApplcAt"}},

		{&s.GnrlRnk1CrspareaRcptde, []string{"GNRL_RNK1_CRSPAREA_RCPTDE", "gnrlRnk1CrspareaRcptde"}},
		{&s.GnrlRnk1CrspareaEndde, []string{"GNRL_RNK1_CRSPAREA_ENDDE", "gnrlRnk1CrspareaEndde"}},
		{&s.GnrlRnk1EtcGgRcptde, []string{"GNRL_RNK1_ETC_GG_RCPTDE", "gnrlRnk1EtcGgRcptde"}},
		{&s.GnrlRnk1EtcGgEndde, []string{"GNRL_RNK1_ETC_GG_ENDDE", "gnrlRnk1EtcGgEndde"}},
		{&s.GnrlRnk1EtcAreaRcptde, []string{"GNRL_RNK1_ETC_AREA_RCPTDE", "gnrlRnk1EtcAreaRcptde"}},
		{&s.GnrlRnk1EtcAreaEndde, []string{"GNRL_RNK1_ETC_AREA_ENDDE", "gnrlRnk1EtcAreaEndde"}},
		{&s.GnrlRnk2CrspareaRcptde, []string{"GNRL_RNK2_CRSPAREA_RCPTDE", "gnrlRnk2CrspareaRcptde"}},
		{&s.GnrlRnk2CrspareaEndde, []string{"GNRL_RNK2_CRSPAREA_ENDDE", "gnrlRnk2CrspareaEndde"}},
		{&s.GnrlRnk2EtcGgRcptde, []string{"GNRL_RNK2_ETC_GG_RCPTDE", "gnrlRnk2EtcGgRcptde"}},
		{&s.GnrlRnk2EtcGgEndde, []string{"GNRL_RNK2_ETC_GG_ENDDE", "gnrlRnk2EtcGgEndde"}},
		{&s.GnrlRnk2EtcAreaRcptde, []string{"GNRL_RNK2_ETC_AREA_RCPTDE", "gnrlRnk2EtcAreaRcptde"}},
		{&s.GnrlRnk2EtcAreaEndde, []string{"GNRL_RNK2_ETC_AREA_ENDDE", "gnrlRnk2EtcAreaEndde"}},
	}
}

// MapSupply converts an item into a housing supply. Absent values stay nil
// so the upsert keeps whatever is stored.
func MapSupply(it Item) (*housing.Supply, error) {
	raw, err := json.Marshal(it)
	if err != nil {
		return nil, fmt.Errorf("encode raw item: %w", err)
	}

	s := &housing.Supply{
		PblancNo: it.PblancNo(),
		RawData:  core.RawJSON(raw),
	}

	for _, b := range fields(s) {
		switch target := b.target.(type) {
		case **string:
			*target = it.String(b.keys...)
		case **float64:
			*target = it.Float(b.keys...)
		case **int:
			*target = it.Int(b.keys...)
		case **housing.Date:
			*target = it.Date(b.keys...)
		default:
			return nil, fmt.Errorf("unsupported field type %T", b.target)
		}
	}

	return s, nil
}
