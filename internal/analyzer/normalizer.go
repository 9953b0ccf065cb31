package analyzer

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/wonny/jini/internal/contracts"
	"github.com/wonny/jini/internal/schema"
)

// Normalizer coerces raw string-typed rows into canonical transactions.
// 이후 단계는 문자열을 다시 파싱하지 않는다.
type Normalizer struct {
	cfg Config
	log zerolog.Logger
}

// NewNormalizer creates a normalizer. cfg는 이미 Validate를 통과했어야 한다.
func NewNormalizer(cfg Config, log zerolog.Logger) *Normalizer {
	return &Normalizer{
		cfg: cfg.withDefaults(),
		log: log.With().Str("component", "analyzer.normalizer").Logger(),
	}
}

// NormalizeResult carries the typed rows plus the row-level failures.
type NormalizeResult struct {
	Transactions []contracts.Transaction
	Skipped      []*contracts.MalformedFieldError
}

// SkipReasons aggregates skip counts per field, 운영자 리포트용.
func (r *NormalizeResult) SkipReasons() map[string]int {
	if len(r.Skipped) == 0 {
		return nil
	}
	reasons := make(map[string]int)
	for _, e := range r.Skipped {
		reasons[e.Field]++
	}
	return reasons
}

// Normalize processes the whole batch row-wise. 행 단위 실패는 건너뛰고
// 기록만 남긴다 — 배치 전체를 중단시키지 않는다.
//
// 필수 순서:
//  1. 정수 컬럼 캐스팅 (쉼표 제거, 결측은 0)
//  2. 임대 배치면 전월세 환산 (평당가/지니 계산 전에 와야 함)
//  3. 유형별 면적 컬럼 선택 후 실수 캐스팅
//  4. 년/월/일 → 거래일자
//  5. 평당거래금액 = 거래금액/면적 × 환산상수, 소수 2자리
func (n *Normalizer) Normalize(batch *contracts.RawBatch) (*NormalizeResult, error) {
	areaCol, err := schema.AreaColumn(n.cfg.PropertyType)
	if err != nil {
		return nil, err
	}

	isLease := batch.HasColumn(schema.ColDeposit)
	result := &NormalizeResult{
		Transactions: make([]contracts.Transaction, 0, len(batch.Rows)),
	}

	for i, row := range batch.Rows {
		tx, ferr := n.normalizeRow(i, row, areaCol, isLease)
		if ferr != nil {
			result.Skipped = append(result.Skipped, ferr)
			n.log.Debug().
				Int("row", ferr.Row).
				Str("field", ferr.Field).
				Str("value", ferr.Value).
				Str("reason", ferr.Reason).
				Msg("row skipped")
			continue
		}
		result.Transactions = append(result.Transactions, *tx)
	}

	n.log.Info().
		Int("rows_in", len(batch.Rows)).
		Int("rows_out", len(result.Transactions)).
		Int("skipped", len(result.Skipped)).
		Msg("normalization completed")

	return result, nil
}

func (n *Normalizer) normalizeRow(idx int, row contracts.RawRow, areaCol string, isLease bool) (*contracts.Transaction, *contracts.MalformedFieldError) {
	ints := make(map[string]int64, len(schema.IntColumns))
	for _, col := range schema.IntColumns {
		v, ferr := parseIntField(idx, col, row[col])
		if ferr != nil {
			return nil, ferr
		}
		ints[col] = v
	}

	tx := &contracts.Transaction{
		Year:         int(ints[schema.ColYear]),
		Month:        int(ints[schema.ColMonth]),
		Day:          int(ints[schema.ColDay]),
		RegionCode:   strings.TrimSpace(row[schema.ColRegionCode]),
		DealAmount:   float64(ints[schema.ColDealAmount]),
		BuildingYear: int(ints[schema.ColBuildingYear]),
		Neighborhood: strings.TrimSpace(row[schema.ColNeighborhood]),
	}

	// 지역코드는 문자열 조인 키: 숫자 변환으로 선행 구조를 잃으면 안 된다
	if tx.RegionCode == "" {
		return nil, &contracts.MalformedFieldError{
			Row: idx, Field: schema.ColRegionCode, Reason: "empty region code",
		}
	}

	// 임대 → 매매 환산: 보증금 + 월세*100/환산율, 소수 2자리 반올림.
	// 평당가 계산보다 먼저 와야 매매/임대가 가격 비교 가능해진다.
	if isLease {
		tx.Deposit = ints[schema.ColDeposit]
		tx.MonthlyRent = ints[schema.ColMonthlyRent]
		amount := decimal.NewFromInt(tx.Deposit).Add(
			decimal.NewFromInt(tx.MonthlyRent).
				Mul(decimal.NewFromInt(100)).
				Div(decimal.NewFromFloat(n.cfg.LeaseRate)))
		tx.DealAmount, _ = amount.Round(2).Float64()
	}

	area, ferr := parseFloatField(idx, areaCol, row[areaCol])
	if ferr != nil {
		return nil, ferr
	}
	tx.Area = area

	// 년/월/일 → 거래일자. time.Date는 13월, 2월 31일 등을 조용히 넘겨
	// 버리므로 구성 요소 역검증으로 달력 유효성을 확인한다.
	date := time.Date(tx.Year, time.Month(tx.Month), tx.Day, 0, 0, 0, 0, time.UTC)
	if date.Year() != tx.Year || int(date.Month()) != tx.Month || date.Day() != tx.Day || tx.Year == 0 {
		return nil, &contracts.MalformedFieldError{
			Row: idx, Field: schema.ColDay,
			Value:  strconv.Itoa(tx.Day),
			Reason: "invalid calendar date",
		}
	}
	tx.DealDate = date

	// 평당거래금액. 면적 0은 무한대 단가 — 수치로 둘 수 없으니 행 실패.
	if tx.Area == 0 {
		return nil, &contracts.MalformedFieldError{
			Row: idx, Field: areaCol, Value: row[areaCol],
			Reason: "zero or missing area, unit price undefined",
		}
	}
	unitPrice := decimal.NewFromFloat(tx.DealAmount).
		Div(decimal.NewFromFloat(tx.Area)).
		Mul(decimal.NewFromFloat(n.cfg.UnitConversion))
	tx.UnitPrice, _ = unitPrice.Round(2).Float64()

	return tx, nil
}

// parseIntField strips thousands separators and casts. 결측은 0.
func parseIntField(row int, field, value string) (int64, *contracts.MalformedFieldError) {
	s := strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &contracts.MalformedFieldError{
			Row: row, Field: field, Value: value,
			Reason: "not an integer after separator stripping",
		}
	}
	return v, nil
}

// parseFloatField strips thousands separators and casts. 결측은 0.
func parseFloatField(row int, field, value string) (float64, *contracts.MalformedFieldError) {
	s := strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &contracts.MalformedFieldError{
			Row: row, Field: field, Value: value,
			Reason: "not a number after separator stripping",
		}
	}
	return v, nil
}
