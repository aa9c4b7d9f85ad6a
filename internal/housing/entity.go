// AngelaMos | 2026
// entity.go

package housing

import (
	"time"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

// Supply is one subscription announcement. Field names follow the public
// data API; PblancNo is the natural key.
type Supply struct {
	ID       int64        `db:"id"        json:"id"`
	RawData  core.RawJSON `db:"raw_data"  json:"rawData"`
	PblancNo string       `db:"pblanc_no" json:"pblancNo"`

	HouseManageNo      *string `db:"house_manage_no"       json:"houseManageNo"`
	HouseName          *string `db:"house_nm"              json:"houseName"`
	HouseSecd          *string `db:"house_secd"            json:"houseSecd"`
	HouseSecdNm        *string `db:"house_secd_nm"         json:"houseSecdNm"`
	HouseDtlSecd       *string `db:"house_dtl_secd"        json:"houseDtlSecd"`
	HouseDtlSecdNm     *string `db:"house_dtl_secd_nm"     json:"houseDtlSecdNm"`
	RentSecd           *string `db:"rent_secd"             json:"rentSecd"`
	RentSecdNm         *string `db:"rent_secd_nm"          json:"rentSecdNm"`
	SubscrptAreaCode   *string `db:"subscrpt_area_code"    json:"subscrptAreaCode"`
	SubscrptAreaCodeNm *string `db:"subscrpt_area_code_nm" json:"subscrptAreaCodeNm"`
	HssplyZip          *string `db:"hssply_zip"            json:"hssplyZip"`
	HssplyAdres        *string `db:"hssply_adres"          json:"hssplyAdres"`

	Latitude        *float64 `db:"latitude"          json:"latitude"`
	Longitude       *float64 `db:"longitude"         json:"longitude"`
	TotSuplyHshldco *int     `db:"tot_suply_hshldco" json:"totSuplyHshldco"`

	RcritPblancDe     *Date `db:"rcrit_pblanc_de"     json:"rcritPblancDe"`
	RceptBgnde        *Date `db:"rcept_bgnde"         json:"rceptBgnde"`
	RceptEndde        *Date `db:"rcept_endde"         json:"rceptEndde"`
	SpsplyRceptBgnde  *Date `db:"spsply_rcept_bgnde"  json:"spsplyRceptBgnde"`
	SpsplyRceptEndde  *Date `db:"spsply_rcept_endde"  json:"spsplyRceptEndde"`
	PrzwnerPresnatnDe *Date `db:"przwner_presnatn_de" json:"przwnerPresnatnDe"`
	CntrctCnclsBgnde  *Date `db:"cntrct_cncls_bgnde"  json:"cntrctCnclsBgnde"`
	CntrctCnclsEndde  *Date `db:"cntrct_cncls_endde"  json:"cntrctCnclsEndde"`
	MvnPrearngeYm     *Date `db:"mvn_prearnge_ym"     json:"mvnPrearngeYm"`

	HmpgAdres       *string `db:"hmpg_adres"        json:"hmpgAdres"`
	PblancURL       *string `db:"pblanc_url"        json:"pblancUrl"`
	MdhsTelno       *string `db:"mdhs_telno"        json:"mdhsTelno"`
	CnstrctEntrpsNm *string `db:"cnstrct_entrps_nm" json:"cnstrctEntrpsNm"`
	BsnsMbyNm       *string `db:"bsns_mby_nm"       json:"bsnsMbyNm"`
	NsprcNm         *string `db:"nsprc_nm"          json:"nsprcNm"`

	SpecltRdnEarthAt        *string `db:"speclt_rdn_earth_at"          json:"specltRdnEarthAt"`
	MdatTrgetAreaSecd       *string `db:"mdat_trget_area_secd"         json:"mdatTrgetAreaSecd"`
	ParcprcUlsAt            *string `db:"parcprc_uls_at"               json:"parcprcUlsAt"`
	ImprmnBsnsAt            *string `db:"imprmn_bsns_at"               json:"imprmnBsnsAt"`
	PublicHouseEarthAt      *string `db:"public_house_earth_at"        json:"publicHouseEarthAt"`
	LrsclBldlndAt           *string `db:"lrscl_bldlnd_at"              json:"lrsclBldlndAt"`
	NplnPrvoprPublicHouseAt *string `db:"npln_prvopr_public_house_at"  json:"nplnPrvoprPublicHouseAt"`
	PublicHouseSpclwApplcAt *string `db:"public_house_spclw_applc_at"  json:"publicHouseSpclwApplcAt"`

	GnrlRnk1CrspareaRcptde *Date `db:"gnrl_rnk1_crsparea_rcptde" json:"gnrlRnk1CrspareaRcptde"`
	GnrlRnk1CrspareaEndde  *Date `db:"gnrl_rnk1_crsparea_endde"  json:"gnrlRnk1CrspareaEndde"`
	GnrlRnk1EtcGgRcptde    *Date `db:"gnrl_rnk1_etc_gg_rcptde"   json:"gnrlRnk1EtcGgRcptde"`
	GnrlRnk1EtcGgEndde     *Date `db:"gnrl_rnk1_etc_gg_endde"    json:"gnrlRnk1EtcGgEndde"`
	GnrlRnk1EtcAreaRcptde  *Date `db:"gnrl_rnk1_etc_area_rcptde" json:"gnrlRnk1EtcAreaRcptde"`
	GnrlRnk1EtcAreaEndde   *Date `db:"gnrl_rnk1_etc_area_endde"  json:"gnrlRnk1EtcAreaEndde"`
	GnrlRnk2CrspareaRcptde *Date `db:"gnrl_rnk2_crsparea_rcptde" json:"gnrlRnk2CrspareaRcptde"`
	GnrlRnk2CrspareaEndde  *Date `db:"gnrl_rnk2_crsparea_endde"  json:"gnrlRnk2CrspareaEndde"`
	GnrlRnk2EtcGgRcptde    *Date `db:"gnrl_rnk2_etc_gg_rcptde"   json:"gnrlRnk2EtcGgRcptde"`
	GnrlRnk2EtcGgEndde     *Date `db:"gnrl_rnk2_etc_gg_endde"    json:"gnrlRnk2EtcGgEndde"`
	GnrlRnk2EtcAreaRcptde  *Date `db:"gnrl_rnk2_etc_area_rcptde" json:"gnrlRnk2EtcAreaRcptde"`
	GnrlRnk2EtcAreaEndde   *Date `db:"gnrl_rnk2_etc_area_endde"  json:"gnrlRnk2EtcAreaEndde"`

	CollectedAt time.Time `db:"collected_at" json:"collectedAt"`
	IsHidden    bool      `db:"is_hidden"    json:"isHidden"`
	CreatedAt   time.Time `db:"created_at"   json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updatedAt"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (s *Supply) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// descriptiveColumns are the source-mapped columns other than the key and
// the coordinates.
var descriptiveColumns = []string{
	"house_manage_no", "house_nm", "house_secd", "house_secd_nm",
	"house_dtl_secd", "house_dtl_secd_nm", "rent_secd", "rent_secd_nm",
	"subscrpt_area_code", "subscrpt_area_code_nm", "hssply_zip", "hssply_adres",
	"tot_suply_hshldco",
	"rcrit_pblanc_de", "rcept_bgnde", "rcept_endde",
	"spsply_rcept_bgnde", "spsply_rcept_endde", "przwner_presnatn_de",
	"cntrct_cncls_bgnde", "cntrct_cncls_endde", "mvn_prearnge_ym",
	"hmpg_adres", "pblanc_url", "mdhs_telno",
	"cnstrct_entrps_nm", "bsns_mby_nm", "nsprc_nm",
	"speclt_rdn_earth_at", "mdat_trget_area_secd", "parcprc_uls_at",
	"imprmn_bsns_at", "public_house_earth_at", "lrscl_bldlnd_at",
	"npln_prvopr_public_house_at", "public_house_spclw_applc_at",
	"gnrl_rnk1_crsparea_rcptde", "gnrl_rnk1_crsparea_endde",
	"gnrl_rnk1_etc_gg_rcptde", "gnrl_rnk1_etc_gg_endde",
	"gnrl_rnk1_etc_area_rcptde", "gnrl_rnk1_etc_area_endde",
	"gnrl_rnk2_crsparea_rcptde", "gnrl_rnk2_crsparea_endde",
	"gnrl_rnk2_etc_gg_rcptde", "gnrl_rnk2_etc_gg_endde",
	"gnrl_rnk2_etc_area_rcptde", "gnrl_rnk2_etc_area_endde",
}
