package molit

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// statusActive marks a still-valid entry in the 법정동코드 전체자료 file.
const statusActive = "존재"

// LoadDistrictCodes reads the CP949-encoded 법정동코드 전체자료.txt and
// returns the distinct 5-digit 시군구 codes, in file order. 시도/시군구
// 묶음 코드(뒤가 000인 것)는 조회 대상이 아니라 버린다.
func LoadDistrictCodes(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lawd code file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(transform.NewReader(f, korean.EUCKR.NewDecoder()))

	var codes []string
	seen := make(map[string]bool)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false // 헤더 행
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}
		if strings.TrimSpace(fields[2]) != statusActive {
			continue
		}
		code := strings.TrimSpace(fields[0])
		if len(code) < 5 {
			continue
		}
		district := code[:5]
		if seen[district] {
			continue
		}
		num, err := strconv.Atoi(district)
		if err != nil {
			continue
		}
		if num%1000 == 0 {
			continue
		}
		seen[district] = true
		codes = append(codes, district)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lawd code file: %w", err)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no district codes in %s", path)
	}
	return codes, nil
}
