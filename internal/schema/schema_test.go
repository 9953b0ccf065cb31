package schema

import (
	"errors"
	"testing"

	"github.com/wonny/jini/internal/contracts"
)

func TestAreaColumn(t *testing.T) {
	tests := []struct {
		pt      PropertyType
		want    string
		wantErr bool
	}{
		{PropertyApartment, ColExclusiveArea, false},
		{PropertyRowHouse, ColExclusiveArea, false},
		{PropertyOfficetel, ColExclusiveArea, false},
		{PropertyHouse, ColTotalArea, false}, // 단독다가구만 연면적
		{PropertyType("castle"), "", true},
	}

	for _, tt := range tests {
		got, err := AreaColumn(tt.pt)
		if (err != nil) != tt.wantErr {
			t.Errorf("AreaColumn(%q) error = %v, wantErr %v", tt.pt, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("AreaColumn(%q) = %q, want %q", tt.pt, got, tt.want)
		}
	}
}

func TestTableName(t *testing.T) {
	tests := []struct {
		pt      PropertyType
		kind    TransactionKind
		want    string
		wantErr bool
	}{
		{PropertyApartment, KindSale, "apt_raw", false},
		{PropertyApartment, KindLease, "apt_lease_raw", false},
		{PropertyRowHouse, KindSale, "multi_family_raw", false},
		{PropertyHouse, KindLease, "house_lease_raw", false},
		{PropertyOfficetel, KindSale, "office_raw", false},
		{PropertyType("castle"), KindSale, "", true},
		{PropertyApartment, TransactionKind("barter"), "", true},
	}

	for _, tt := range tests {
		got, err := TableName(tt.pt, tt.kind)
		if (err != nil) != tt.wantErr {
			t.Errorf("TableName(%q, %q) error = %v, wantErr %v", tt.pt, tt.kind, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("TableName(%q, %q) = %q, want %q", tt.pt, tt.kind, got, tt.want)
		}
	}
}

func TestResultName(t *testing.T) {
	tests := []struct {
		pt   PropertyType
		kind TransactionKind
		want string
	}{
		{PropertyApartment, KindSale, "아파트_매매"},
		{PropertyApartment, KindLease, "아파트_임대"},
		{PropertyRowHouse, KindSale, "다세대_매매"},
		{PropertyHouse, KindLease, "단독다가구_임대"},
		{PropertyOfficetel, KindSale, "오피스텔_매매"},
	}

	for _, tt := range tests {
		if got := ResultName(tt.pt, tt.kind); got != tt.want {
			t.Errorf("ResultName(%q, %q) = %q, want %q", tt.pt, tt.kind, got, tt.want)
		}
	}
}

func TestValidateGroupKeys(t *testing.T) {
	if err := ValidateGroupKeys([]GroupKey{KeyYear, KeyRegionCode}); err != nil {
		t.Errorf("ValidateGroupKeys(valid) error = %v", err)
	}

	err := ValidateGroupKeys([]GroupKey{KeyYear, GroupKey("zipcode")})
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	var cfgErr *contracts.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error type = %T, want *contracts.ConfigurationError", err)
	}

	if err := ValidateGroupKeys(nil); err == nil {
		t.Error("expected error for empty key list")
	}
}

func TestValidateDedupColumns(t *testing.T) {
	if err := ValidateDedupColumns(DefaultDedupColumns); err != nil {
		t.Errorf("ValidateDedupColumns(defaults) error = %v", err)
	}
	if err := ValidateDedupColumns([]DedupColumn{DedupColumn("color")}); err == nil {
		t.Error("expected error for unknown dedup column")
	}
	if err := ValidateDedupColumns(nil); err == nil {
		t.Error("expected error for empty dedup columns")
	}
}
