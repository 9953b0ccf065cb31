package commands

import (
	"fmt"
	"sort"

	"github.com/wonny/jini/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintRunHeader prints a formatted run header
func PrintRunHeader(title, detail string) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  %s\n", title)
	if detail != "" {
		fmt.Println("───────────────────────────────────────────────────────────")
		fmt.Printf("  %s\n", detail)
	}
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintRunReport prints the pipeline run summary
func PrintRunReport(report *contracts.RunReport) {
	fmt.Println()
	fmt.Printf("  Table          : %s\n", report.Table)
	fmt.Printf("  Rows read      : %d\n", report.RowsRead)
	fmt.Printf("  Rows normalized: %d (skipped %d)\n", report.RowsNormalized, report.RowsSkipped)
	if len(report.SkipReasons) > 0 {
		reasons := make([]string, 0, len(report.SkipReasons))
		for reason := range report.SkipReasons {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Printf("    - %s: %d\n", reason, report.SkipReasons[reason])
		}
	}
	fmt.Printf("  Duplicates     : %d removed\n", report.DuplicatesRemoved)
	fmt.Printf("  Unmatched 지역 : %d\n", report.UnmatchedRegion)
	if report.OutliersRemoved > 0 {
		fmt.Printf("  Outliers       : %d removed\n", report.OutliersRemoved)
	}
	fmt.Printf("  Groups         : %d\n", report.Groups)
	fmt.Printf("  Duration       : %.2fs\n", report.FinishedAt.Sub(report.StartedAt).Seconds())
}

// PrintCompletion prints a completion message
func PrintCompletion(message string) {
	fmt.Println()
	fmt.Printf("✅ %s\n", message)
}
