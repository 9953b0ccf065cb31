package molit

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/jini/internal/contracts"
	"github.com/wonny/jini/internal/schema"
)

// resultCodeOK is the normal-service code of the open-data gateway.
const resultCodeOK = "00"

// dealResponse mirrors the RTMS XML envelope. item 하위 원소명이
// 한글이라 필드를 고정하지 않고 ",any"로 받는다.
type dealResponse struct {
	Header struct {
		ResultCode string `xml:"resultCode"`
		ResultMsg  string `xml:"resultMsg"`
	} `xml:"header"`
	Body struct {
		Items struct {
			Item []dealItem `xml:"item"`
		} `xml:"items"`
		TotalCount int `xml:"totalCount"`
	} `xml:"body"`
}

type dealItem struct {
	Fields []dealField `xml:",any"`
}

type dealField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// FetchDeals fetches one (지역, 연월) page of transactions for a table
// variant and returns them as a raw batch keyed by the original Korean
// column names. 데이터가 없는 조합은 빈 배치를 돌려준다.
func (c *Client) FetchDeals(ctx context.Context, pt schema.PropertyType, kind schema.TransactionKind, lawdCd, dealYmd string) (*contracts.RawBatch, error) {
	path, err := EndpointPath(pt, kind)
	if err != nil {
		return nil, err
	}
	table, err := schema.TableName(pt, kind)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("LAWD_CD", lawdCd)
	params.Set("DEAL_YMD", dealYmd)
	params.Set("numOfRows", "9999")
	params.Set("pageNo", "1")
	// serviceKey는 발급분 자체가 URL 인코딩돼 있어 그대로 잇는다.
	fullURL := fmt.Sprintf("%s/%s?serviceKey=%s&%s", c.baseURL, path, c.serviceKey, params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	batch, err := parseDealResponse(body)
	if err != nil {
		return nil, fmt.Errorf("parse response failed (%s, %s): %w", lawdCd, dealYmd, err)
	}
	batch.Table = table

	c.logger.WithFields(map[string]interface{}{
		"lawd_cd":  lawdCd,
		"deal_ymd": dealYmd,
		"rows":     batch.Len(),
	}).Debug("Fetched deals")
	return batch, nil
}

// parseDealResponse decodes the XML envelope into a raw batch. 컬럼
// 순서는 첫 등장 순서를 유지한다.
func parseDealResponse(body []byte) (*contracts.RawBatch, error) {
	var envelope dealResponse
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	if envelope.Header.ResultCode != resultCodeOK {
		return nil, fmt.Errorf("gateway error %s: %s", envelope.Header.ResultCode, envelope.Header.ResultMsg)
	}

	batch := &contracts.RawBatch{}
	seen := make(map[string]bool)
	for _, item := range envelope.Body.Items.Item {
		row := make(contracts.RawRow, len(item.Fields))
		for _, f := range item.Fields {
			name := f.XMLName.Local
			if !seen[name] {
				seen[name] = true
				batch.Columns = append(batch.Columns, name)
			}
			row[name] = strings.TrimSpace(f.Value)
		}
		batch.Rows = append(batch.Rows, row)
	}
	return batch, nil
}

// MonthRange expands an inclusive [from, to] range of "YYYYMM" codes.
func MonthRange(from, to string) ([]string, error) {
	start, err := time.Parse("200601", from)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", from, err)
	}
	end, err := time.Parse("200601", to)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", to, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("month range %s..%s is inverted", from, to)
	}

	var out []string
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 1, 0) {
		out = append(out, cur.Format("200601"))
	}
	return out, nil
}
