package analyzer

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"

	"github.com/wonny/jini/internal/contracts"
	"github.com/wonny/jini/internal/schema"
)

// DedupReport carries the before/after row counts of one dedup pass.
type DedupReport struct {
	Before  int
	After   int
	Removed int
}

// Deduplicate removes rows that are exact duplicates on the key column set,
// keeping the first occurrence (stable, first-seen).
// 키는 xxh3로 해싱해서 본다 — 수백만 행에서도 맵 키가 가볍다.
func Deduplicate(txs []contracts.Transaction, keys []schema.DedupColumn, log zerolog.Logger) ([]contracts.Transaction, DedupReport) {
	if len(keys) == 0 {
		keys = schema.DefaultDedupColumns
	}

	seen := make(map[uint64]struct{}, len(txs))
	out := make([]contracts.Transaction, 0, len(txs))

	var sb strings.Builder
	for i := range txs {
		sb.Reset()
		writeDedupKey(&sb, &txs[i], keys)
		h := xxh3.HashString(sb.String())
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, txs[i])
	}

	report := DedupReport{
		Before:  len(txs),
		After:   len(out),
		Removed: len(txs) - len(out),
	}

	log.Info().
		Int("before", report.Before).
		Int("after", report.After).
		Int("removed", report.Removed).
		Msg("duplicates removed")

	return out, report
}

func writeDedupKey(sb *strings.Builder, tx *contracts.Transaction, keys []schema.DedupColumn) {
	for _, k := range keys {
		switch k {
		case schema.DedupDealDate:
			sb.WriteString(tx.DealDate.Format("2006-01-02"))
		case schema.DedupRegionCode:
			sb.WriteString(tx.RegionCode)
		case schema.DedupDealAmount:
			sb.WriteString(strconv.FormatFloat(tx.DealAmount, 'f', -1, 64))
		case schema.DedupArea:
			sb.WriteString(strconv.FormatFloat(tx.Area, 'f', -1, 64))
		}
		sb.WriteByte('|')
	}
}
