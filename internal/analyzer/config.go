// Package analyzer implements the transaction cleaning and aggregation
// pipeline: normalize → dedup → region map → (outlier filter) → aggregate.
package analyzer

import (
	"fmt"

	"github.com/wonny/jini/internal/contracts"
	"github.com/wonny/jini/internal/schema"
)

// 평↔제곱미터 환산 상수. 파이프라인 변형에 따라 두 값이 쓰여 왔는데
// (3.30579 vs 3.306) 어느 쪽이 맞는지 근거 문서가 없다. 설정으로 노출하고
// 신규 파이프라인은 정밀한 값을 기본으로 한다.
const (
	PyeongPerSquareMeter       = 3.30579
	PyeongPerSquareMeterLegacy = 3.306
)

// DefaultLeaseRate is the 전월세 환산율 used to synthesize a sale-equivalent
// price from deposit + monthly rent.
const DefaultLeaseRate = 6

// DefaultProvincePriority pins 서울/경기 to sort first; everything else
// falls into the stable bucket 99.
func DefaultProvincePriority() map[string]int {
	return map[string]int{
		"서울특별시": 1,
		"경기도":   2,
	}
}

// provincePriorityFallback is the bucket for provinces not in the priority map.
const provincePriorityFallback = 99

// Config is the per-run pipeline configuration.
// 한 번 검증되면 실행 중에는 바뀌지 않는다.
type Config struct {
	PropertyType      schema.PropertyType
	TransactionKind   schema.TransactionKind
	RegionGranularity schema.RegionGranularity

	// Aggregation
	GroupKeys     []schema.GroupKey
	WithUnitPrice bool // 평당거래금액 평균/지니 포함 여부
	SortTimeDesc  bool // 시간 키 정렬 방향 (파이프라인별 상이)

	// ProvincePriority pins specific 시도명 to sort first.
	// nil이면 DefaultProvincePriority().
	ProvincePriority map[string]int

	// Normalization
	UnitConversion float64 // 0이면 PyeongPerSquareMeter
	LeaseRate      float64 // 0이면 DefaultLeaseRate

	// Deduplication key columns. nil이면 schema.DefaultDedupColumns.
	DedupColumns []schema.DedupColumn

	// Outlier variant
	FilterOutliers bool
}

// Validate checks the configuration once, before any data is touched.
// 잘못된 키는 늦은 조회 실패가 아니라 여기서 ConfigurationError로 끝낸다.
func (c *Config) Validate() error {
	if !schema.ValidPropertyType(c.PropertyType) {
		return &contracts.ConfigurationError{
			Field:  "property_type",
			Detail: fmt.Sprintf("unrecognized property type %q", c.PropertyType),
		}
	}
	if !schema.ValidTransactionKind(c.TransactionKind) {
		return &contracts.ConfigurationError{
			Field:  "transaction_kind",
			Detail: fmt.Sprintf("unrecognized transaction kind %q", c.TransactionKind),
		}
	}
	if !schema.ValidRegionGranularity(c.RegionGranularity) {
		return &contracts.ConfigurationError{
			Field:  "region_granularity",
			Detail: fmt.Sprintf("unrecognized region granularity %q", c.RegionGranularity),
		}
	}
	if err := schema.ValidateGroupKeys(c.GroupKeys); err != nil {
		return err
	}
	if len(c.DedupColumns) > 0 {
		if err := schema.ValidateDedupColumns(c.DedupColumns); err != nil {
			return err
		}
	}
	if c.UnitConversion < 0 {
		return &contracts.ConfigurationError{Field: "unit_conversion", Detail: "must be positive"}
	}
	if c.LeaseRate < 0 {
		return &contracts.ConfigurationError{Field: "lease_rate", Detail: "must be positive"}
	}
	return nil
}

// withDefaults returns a copy with zero values filled in.
func (c Config) withDefaults() Config {
	if c.UnitConversion == 0 {
		c.UnitConversion = PyeongPerSquareMeter
	}
	if c.LeaseRate == 0 {
		c.LeaseRate = DefaultLeaseRate
	}
	if c.DedupColumns == nil {
		c.DedupColumns = schema.DefaultDedupColumns
	}
	if c.ProvincePriority == nil {
		c.ProvincePriority = DefaultProvincePriority()
	}
	return c
}
