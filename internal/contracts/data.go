package contracts

import "time"

// RawRow is one transaction row as it arrives from a data source,
// every value still string-typed.
// ⭐ SSOT: 원본 행은 컬럼명(한글) → 문자열 값 맵으로만 표현
type RawRow map[string]string

// RawBatch is one table snapshot loaded from a data source.
type RawBatch struct {
	Table   string
	Columns []string
	Rows    []RawRow
}

// HasColumn reports whether the batch carries the given column.
func (b *RawBatch) HasColumn(name string) bool {
	for _, c := range b.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of rows in the batch.
func (b *RawBatch) Len() int {
	return len(b.Rows)
}

// Transaction is one normalized real-estate deal.
// 정규화 이후에는 모든 수치 필드가 타입을 가진다 (문자열 재파싱 금지).
type Transaction struct {
	DealDate   time.Time `json:"deal_date"`
	Year       int       `json:"year"`
	Month      int       `json:"month"`
	Day        int       `json:"day"`
	RegionCode string    `json:"region_code"` // 지역코드 (시군구 5자리 또는 행정동 10자리)

	// 거래금액: 매매는 정수(만원), 임대는 전월세 환산 후 소수 둘째 자리
	DealAmount float64 `json:"deal_amount"`
	Area       float64 `json:"area"`       // 면적 (㎡)
	UnitPrice  float64 `json:"unit_price"` // 평당거래금액

	Deposit      int64 `json:"deposit,omitempty"`      // 보증금액 (임대만)
	MonthlyRent  int64 `json:"monthly_rent,omitempty"` // 월세금액 (임대만)
	BuildingYear int   `json:"building_year,omitempty"`

	// Region Mapper가 채우는 행정구역 라벨. 매칭 실패 시 빈 문자열 유지.
	Province     string `json:"province,omitempty"`     // 시도명
	District     string `json:"district,omitempty"`     // 시군구명
	Neighborhood string `json:"neighborhood,omitempty"` // 법정동/읍면동명
}

// YearMonth returns the deal's time key at month granularity (YYYY-MM).
func (t *Transaction) YearMonth() string {
	return t.DealDate.Format("2006-01")
}

// MetroCode returns the first two digits of the region code
// (광역시/도 단위 파티션 키).
func (t *Transaction) MetroCode() string {
	if len(t.RegionCode) < 2 {
		return t.RegionCode
	}
	return t.RegionCode[:2]
}

// RegionRow maps an administrative code to human-readable names.
// conn_code 테이블 한 행에 해당.
type RegionRow struct {
	Province         string // 시도명
	District         string // 시군구명
	DistrictCode     string // 시군구코드 (5자리)
	NeighborhoodCode string // 행정동코드 (10자리)
	NeighborhoodName string // 읍면동명
}

// GroupStat is one aggregation result row.
// 계산된 뒤에는 절대 수정하지 않는다 (한 번 쓰고 싱크로 내보냄).
type GroupStat struct {
	Year       int    `json:"year,omitempty"`
	YearMonth  string `json:"year_month,omitempty"`
	RegionCode string `json:"region_code,omitempty"`
	Province   string `json:"province,omitempty"`
	District   string `json:"district,omitempty"`

	Neighborhood string `json:"neighborhood,omitempty"`

	Count         int     `json:"count"`           // 거래수
	MeanAmount    float64 `json:"mean_amount"`     // 평균거래금액, 소수 1자리
	GiniAmount    float64 `json:"gini_amount"`     // 거래금액지니계수, 소수 4자리
	MeanUnitPrice float64 `json:"mean_unit_price"` // 평균평당거래금액
	GiniUnitPrice float64 `json:"gini_unit_price"` // 평당거래지니계수

	// 그룹 구성원이 1건 이하라 지니계수가 관례값 1로 정의된 경우
	DegenerateGroup bool `json:"degenerate_group,omitempty"`
}

// PartitionBounds reports the outlier filter's per-partition result,
// bounds back-transformed to the original scale.
type PartitionBounds struct {
	Metro      string  `json:"metro"`
	Year       int     `json:"year"`
	Removed    int     `json:"removed"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// RunReport summarizes one pipeline run so an operator can sanity-check
// silently-dropped data.
type RunReport struct {
	Table           string         `json:"table"`
	RowsRead        int            `json:"rows_read"`
	RowsNormalized  int            `json:"rows_normalized"`
	RowsSkipped     int            `json:"rows_skipped"`
	SkipReasons     map[string]int `json:"skip_reasons,omitempty"`
	DuplicatesRemoved int          `json:"duplicates_removed"`
	RowsAfterDedup  int            `json:"rows_after_dedup"`
	UnmatchedRegion int            `json:"unmatched_region"`
	OutliersRemoved int            `json:"outliers_removed"`
	Groups          int            `json:"groups"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      time.Time      `json:"finished_at"`
}
