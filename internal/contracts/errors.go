package contracts

import "fmt"

// MalformedFieldError marks a single row whose numeric/date field could not
// be coerced. 행 단위로만 발생하며 배치 전체를 중단시키지 않는다.
type MalformedFieldError struct {
	Row    int    // 0-based row index within the batch
	Field  string // 컬럼명
	Value  string // 원본 값
	Reason string
}

func (e *MalformedFieldError) Error() string {
	return fmt.Sprintf("malformed field %q at row %d (value %q): %s", e.Field, e.Row, e.Value, e.Reason)
}

// ConfigurationError marks an unrecognized group-by key, property type or
// similar. 파이프라인은 즉시 실패해야 한다 (부분 출력 금지).
type ConfigurationError struct {
	Field  string
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error on %s: %s", e.Field, e.Detail)
}
