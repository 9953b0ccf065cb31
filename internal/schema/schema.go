// Package schema declares the recognized property/transaction types and the
// logical→physical column mapping of the MOLIT transaction tables.
// ⭐ SSOT: 컬럼명 문자열 리터럴은 이 패키지 밖에서 쓰지 않는다
package schema

import (
	"fmt"

	"github.com/wonny/jini/internal/contracts"
)

// PropertyType discriminates the source table schema.
type PropertyType string

const (
	PropertyApartment PropertyType = "apt"       // 아파트
	PropertyRowHouse  PropertyType = "rowhouse"  // 연립다세대
	PropertyHouse     PropertyType = "house"     // 단독다가구
	PropertyOfficetel PropertyType = "officetel" // 오피스텔
)

// TransactionKind discriminates sale vs lease records.
type TransactionKind string

const (
	KindSale  TransactionKind = "sale"  // 매매
	KindLease TransactionKind = "lease" // 전월세
)

// Physical column names shared by all MOLIT table variants.
const (
	ColYear          = "년"
	ColMonth         = "월"
	ColDay           = "일"
	ColRegionCode    = "지역코드"
	ColDealAmount    = "거래금액"
	ColDeposit       = "보증금액"
	ColMonthlyRent   = "월세금액"
	ColBuildingYear  = "건축년도"
	ColExclusiveArea = "전용면적" // 대부분의 유형
	ColTotalArea     = "연면적"  // 단독다가구만
	ColNeighborhood  = "법정동"
	ColDealDate      = "거래일자"
	ColArea          = "면적"
)

// IntColumns are coerced to integers by the normalizer, in this order.
// 값이 비어 있으면 0으로 채운 뒤 캐스팅한다.
var IntColumns = []string{
	ColDealAmount, ColMonthlyRent, ColDeposit, ColBuildingYear,
	ColYear, ColMonth, ColDay,
}

// DropColumns are free-text columns not needed downstream.
// 배치에 없어도 오류가 아니다.
var DropColumns = []string{
	"거래유형", "매수자", "매도자", "중개사소재지", "해제사유발생일", "해제여부",
}

// AreaColumn returns the physical area column for a property type.
// 단독다가구는 연면적, 나머지는 전용면적.
func AreaColumn(pt PropertyType) (string, error) {
	switch pt {
	case PropertyHouse:
		return ColTotalArea, nil
	case PropertyApartment, PropertyRowHouse, PropertyOfficetel:
		return ColExclusiveArea, nil
	default:
		return "", &contracts.ConfigurationError{
			Field:  "property_type",
			Detail: fmt.Sprintf("unrecognized property type %q", pt),
		}
	}
}

// ValidPropertyType reports whether pt is one of the recognized types.
func ValidPropertyType(pt PropertyType) bool {
	_, err := AreaColumn(pt)
	return err == nil
}

// ValidTransactionKind reports whether k is one of the recognized kinds.
func ValidTransactionKind(k TransactionKind) bool {
	return k == KindSale || k == KindLease
}

// GroupKey is one group-by dimension of the aggregator.
type GroupKey string

const (
	KeyYear         GroupKey = "year"          // 년
	KeyYearMonth    GroupKey = "year_month"    // 연월
	KeyRegionCode   GroupKey = "region_code"   // 지역코드/행정동코드
	KeyProvince     GroupKey = "province"      // 시도명
	KeyDistrict     GroupKey = "district"      // 시군구명
	KeyNeighborhood GroupKey = "neighborhood"  // 법정동
)

var knownGroupKeys = map[GroupKey]bool{
	KeyYear: true, KeyYearMonth: true, KeyRegionCode: true,
	KeyProvince: true, KeyDistrict: true, KeyNeighborhood: true,
}

// ValidateGroupKeys fails fast on any unrecognized group-by key.
func ValidateGroupKeys(keys []GroupKey) error {
	if len(keys) == 0 {
		return &contracts.ConfigurationError{Field: "group_keys", Detail: "at least one group-by key is required"}
	}
	for _, k := range keys {
		if !knownGroupKeys[k] {
			return &contracts.ConfigurationError{
				Field:  "group_keys",
				Detail: fmt.Sprintf("unrecognized group-by key %q", k),
			}
		}
	}
	return nil
}

// DedupColumn is a key column the deduplicator may match on.
type DedupColumn string

const (
	DedupDealDate   DedupColumn = "deal_date"   // 거래일자
	DedupRegionCode DedupColumn = "region_code" // 지역코드
	DedupDealAmount DedupColumn = "deal_amount" // 거래금액
	DedupArea       DedupColumn = "area"        // 면적
)

// DefaultDedupColumns is the original key set: 거래일자, 지역코드, 거래금액, 면적.
var DefaultDedupColumns = []DedupColumn{
	DedupDealDate, DedupRegionCode, DedupDealAmount, DedupArea,
}

// ValidateDedupColumns fails fast on an unrecognized dedup key column.
func ValidateDedupColumns(cols []DedupColumn) error {
	known := map[DedupColumn]bool{
		DedupDealDate: true, DedupRegionCode: true, DedupDealAmount: true, DedupArea: true,
	}
	if len(cols) == 0 {
		return &contracts.ConfigurationError{Field: "dedup_columns", Detail: "at least one key column is required"}
	}
	for _, c := range cols {
		if !known[c] {
			return &contracts.ConfigurationError{
				Field:  "dedup_columns",
				Detail: fmt.Sprintf("unrecognized dedup key column %q", c),
			}
		}
	}
	return nil
}

// RegionGranularity selects the join/grouping level of the region mapper.
type RegionGranularity string

const (
	GranularityDistrict     RegionGranularity = "district"     // 시군구
	GranularityNeighborhood RegionGranularity = "neighborhood" // 법정동/행정동
)

// ValidRegionGranularity reports whether g is recognized.
func ValidRegionGranularity(g RegionGranularity) bool {
	return g == GranularityDistrict || g == GranularityNeighborhood
}

// TableName maps (property type, transaction kind) to the raw table name,
// RealEstate.db의 테이블 구성 그대로.
func TableName(pt PropertyType, kind TransactionKind) (string, error) {
	if !ValidPropertyType(pt) {
		return "", &contracts.ConfigurationError{
			Field:  "property_type",
			Detail: fmt.Sprintf("unrecognized property type %q", pt),
		}
	}
	if !ValidTransactionKind(kind) {
		return "", &contracts.ConfigurationError{
			Field:  "transaction_kind",
			Detail: fmt.Sprintf("unrecognized transaction kind %q", kind),
		}
	}

	names := map[PropertyType]string{
		PropertyApartment: "apt",
		PropertyRowHouse:  "multi_family",
		PropertyHouse:     "house",
		PropertyOfficetel: "office",
	}
	if kind == KindLease {
		return names[pt] + "_lease_raw", nil
	}
	return names[pt] + "_raw", nil
}

// ResultName maps (property type, transaction kind) to the human-readable
// result file prefix (아파트_매매 등).
func ResultName(pt PropertyType, kind TransactionKind) string {
	names := map[PropertyType]string{
		PropertyApartment: "아파트",
		PropertyRowHouse:  "다세대",
		PropertyHouse:     "단독다가구",
		PropertyOfficetel: "오피스텔",
	}
	kinds := map[TransactionKind]string{
		KindSale:  "매매",
		KindLease: "임대",
	}
	return names[pt] + "_" + kinds[kind]
}
