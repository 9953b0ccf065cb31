package molit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/jini/internal/schema"
	"github.com/wonny/jini/pkg/config"
	"github.com/wonny/jini/pkg/httputil"
	"github.com/wonny/jini/pkg/logger"
)

// 조건별 자료제공 페이지 경로.
const (
	xlsxPagePath     = "/pt/xls/xls.do?mobileAt="
	xlsxDownloadPath = "/pt/xls/ptXlsExcelDown.do"
)

// thingNo maps property types to the 조건별 자료제공 form codes.
var thingNo = map[schema.PropertyType]string{
	schema.PropertyApartment: "A",
	schema.PropertyRowHouse:  "B",
	schema.PropertyHouse:     "C",
	schema.PropertyOfficetel: "D",
}

// delngSecd maps transaction kinds to the form codes.
var delngSecd = map[schema.TransactionKind]string{
	schema.KindSale:  "1",
	schema.KindLease: "2",
}

// XLSXDownloader drives the 조건별 자료제공 XLSX export of rtmobile.
// 세션 쿠키가 필요해서 httpClient에는 쿠키 저장소가 붙어 있어야 한다.
// ⭐ SSOT: XLSX 전수 다운로드는 이 타입에서만
type XLSXDownloader struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	outDir     string

	bootstrapped bool
	formDefaults url.Values
}

// NewXLSXDownloader builds a downloader writing under outDir.
func NewXLSXDownloader(httpClient *httputil.Client, cfg *config.Config, outDir string, log *logger.Logger) *XLSXDownloader {
	return &XLSXDownloader{
		httpClient: httpClient.WithCookieJar(),
		logger:     log,
		baseURL:    cfg.Molit.XlsxBaseURL,
		outDir:     outDir,
	}
}

// bootstrap loads the search page once to obtain session cookies and the
// hidden form defaults.
func (d *XLSXDownloader) bootstrap(ctx context.Context) error {
	if d.bootstrapped {
		return nil
	}

	resp, err := d.httpClient.Get(ctx, d.baseURL+xlsxPagePath)
	if err != nil {
		return fmt.Errorf("load search page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parse search page: %w", err)
	}

	defaults := url.Values{}
	doc.Find(`form input[type="hidden"]`).Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr("name")
		if !ok || name == "" {
			return
		}
		value, _ := sel.Attr("value")
		defaults.Set(name, value)
	})

	d.formDefaults = defaults
	d.bootstrapped = true
	d.logger.WithField("hidden_fields", len(defaults)).Debug("XLSX session bootstrapped")
	return nil
}

// Download fetches one month of one table variant as raw XLSX bytes.
func (d *XLSXDownloader) Download(ctx context.Context, pt schema.PropertyType, kind schema.TransactionKind, year, month int) ([]byte, error) {
	if err := d.bootstrap(ctx); err != nil {
		return nil, err
	}

	thing, ok := thingNo[pt]
	if !ok {
		return nil, fmt.Errorf("no form code for property type %q", pt)
	}
	secd, ok := delngSecd[kind]
	if !ok {
		return nil, fmt.Errorf("no form code for transaction kind %q", kind)
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	form := url.Values{}
	for name, vals := range d.formDefaults {
		for _, v := range vals {
			form.Set(name, v)
		}
	}
	form.Set("srhThingNo", thing)
	form.Set("srhDelngSecd", secd)
	form.Set("srhAddrGbn", "1")
	form.Set("srhLfstsSecd", "1")
	form.Set("sidoNm", "전체")
	form.Set("sggNm", "전체")
	form.Set("emdNm", "전체")
	form.Set("loadNm", "전체")
	form.Set("areaNm", "전체")
	form.Set("hsmpNm", "전체")
	form.Set("mobileAt", "")
	form.Set("srhFromDt", first.Format("2006-01-02"))
	form.Set("srhToDt", last.Format("2006-01-02"))

	resp, err := d.httpClient.PostForm(ctx, d.baseURL+xlsxDownloadPath, form)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read download body failed: %w", err)
	}
	return content, nil
}

// SaveMonth downloads one month and writes it under
// outDir/<거래구분>/<유형>/<연도>/. Returns the written path.
func (d *XLSXDownloader) SaveMonth(ctx context.Context, pt schema.PropertyType, kind schema.TransactionKind, year, month int) (string, error) {
	content, err := d.Download(ctx, pt, kind, year, month)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(d.outDir, string(kind), string(pt), fmt.Sprintf("%d", year))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s_%d_%02d.xlsx", pt, kind, year, month))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write xlsx: %w", err)
	}

	d.logger.WithFields(map[string]interface{}{
		"path":  path,
		"bytes": len(content),
	}).Info("XLSX saved")
	return path, nil
}

// SaveRange downloads every table variant for every month in the
// inclusive range. 개별 월 실패는 건너뛰고 집계해 보고한다.
func (d *XLSXDownloader) SaveRange(ctx context.Context, fromYear, fromMonth, toYear, toMonth int) (saved, failed int, err error) {
	cur := time.Date(fromYear, time.Month(fromMonth), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(toYear, time.Month(toMonth), 1, 0, 0, 0, 0, time.UTC)
	if end.Before(cur) {
		return 0, 0, fmt.Errorf("month range %d-%02d..%d-%02d is inverted", fromYear, fromMonth, toYear, toMonth)
	}

	for ; !cur.After(end); cur = cur.AddDate(0, 1, 0) {
		for pt := range thingNo {
			for kind := range delngSecd {
				if ctx.Err() != nil {
					return saved, failed, ctx.Err()
				}
				if _, err := d.SaveMonth(ctx, pt, kind, cur.Year(), int(cur.Month())); err != nil {
					failed++
					d.logger.WithError(err).WithFields(map[string]interface{}{
						"property_type": pt,
						"kind":          kind,
						"month":         cur.Format("2006-01"),
					}).Warn("XLSX download failed")
					continue
				}
				saved++
			}
		}
	}
	return saved, failed, nil
}
