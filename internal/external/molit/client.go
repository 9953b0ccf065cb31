// Package molit talks to the 국토교통부 실거래가 공개 시스템: the open-data
// XML API for monthly collection and the 조건별 자료제공 XLSX download page.
package molit

import (
	"fmt"

	"github.com/wonny/jini/internal/schema"
	"github.com/wonny/jini/pkg/config"
	"github.com/wonny/jini/pkg/httputil"
	"github.com/wonny/jini/pkg/logger"
)

// Client handles communication with the MOLIT open-data API
// ⭐ SSOT: 실거래가 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	serviceKey string
}

// NewClient creates a new MOLIT client. 호출 빈도 제한은 httpClient 쪽
// 레이트리미터가 책임진다.
func NewClient(httpClient *httputil.Client, cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.Molit.BaseURL,
		serviceKey: cfg.Molit.ServiceKey,
	}
}

// endpointPath maps (유형, 거래구분) to the RTMS service path.
var endpointPath = map[schema.PropertyType]map[schema.TransactionKind]string{
	schema.PropertyApartment: {
		schema.KindSale:  "getRTMSDataSvcAptTradeDev",
		schema.KindLease: "getRTMSDataSvcAptRent",
	},
	schema.PropertyRowHouse: {
		schema.KindSale:  "getRTMSDataSvcRHTrade",
		schema.KindLease: "getRTMSDataSvcRHRent",
	},
	schema.PropertyHouse: {
		schema.KindSale:  "getRTMSDataSvcSHTrade",
		schema.KindLease: "getRTMSDataSvcSHRent",
	},
	schema.PropertyOfficetel: {
		schema.KindSale:  "getRTMSDataSvcOffiTrade",
		schema.KindLease: "getRTMSDataSvcOffiRent",
	},
}

// EndpointPath returns the service path for a table variant.
func EndpointPath(pt schema.PropertyType, kind schema.TransactionKind) (string, error) {
	byKind, ok := endpointPath[pt]
	if !ok {
		return "", fmt.Errorf("no endpoint for property type %q", pt)
	}
	path, ok := byKind[kind]
	if !ok {
		return "", fmt.Errorf("no endpoint for transaction kind %q", kind)
	}
	return path, nil
}
