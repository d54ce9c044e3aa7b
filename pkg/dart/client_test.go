package dart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(&Config{BaseURL: server.URL, ApiKey: "test-key"}, zap.NewNop())
}

func TestCompanyProfileFormatsFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company.json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("crtfc_key"))
		assert.Equal(t, "00126380", r.URL.Query().Get("corp_code"))
		fmt.Fprint(w, `{
			"status": "000",
			"message": "정상",
			"stock_name": "삼성전자",
			"ceo_nm": "한종희",
			"adres": "경기도 수원시",
			"est_dt": "19690113",
			"corp_cls": "Y",
			"induty_code": "264"
		}`)
	})

	profile, err := client.CompanyProfile(context.Background(), "00126380")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "삼성전자", profile.Name)
	assert.Equal(t, "1969년 01월 13일", profile.Founded)
	assert.Equal(t, "유가", profile.CorpClass)
	assert.Equal(t, "264", profile.IndutyCode)
}

func TestCompanyProfileEdgeValues(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"000","stock_name":"어딘가","est_dt":"","corp_cls":"Z"}`)
	})

	profile, err := client.CompanyProfile(context.Background(), "00000001")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, NoData, profile.Founded, "missing formation date is no-data, not a failure")
	assert.Equal(t, "알 수 없음", profile.CorpClass)
}

func TestCompanyProfileNoUsableData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"013","message":"조회된 데이타가 없습니다."}`)
	})

	profile, err := client.CompanyProfile(context.Background(), "00000001")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestCompanyProfileTransportFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.CompanyProfile(context.Background(), "00000001")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "00000001", apiErr.CorpCode)
	assert.Equal(t, "company.json", apiErr.Endpoint)
}

func TestCompanyProfileMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>not json</html>`)
	})

	_, err := client.CompanyProfile(context.Background(), "00000001")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
}

func TestTotalSharesMatchesOrdinaryRow(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stockTotqySttus.json", r.URL.Path)
		assert.Equal(t, "2023", r.URL.Query().Get("bsns_year"))
		assert.Equal(t, "11011", r.URL.Query().Get("reprt_code"))
		fmt.Fprint(w, `{
			"status": "000",
			"list": [
				{"se": "우선주", "istc_totqy": "822,886,700"},
				{"se": " 보통주 ", "istc_totqy": "5,969,782,550"},
				{"se": "합계", "istc_totqy": "6,792,669,250"}
			]
		}`)
	})

	total, ok, err := client.TotalShares(context.Background(), "00126380", "2023", "11011")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "5,969,782,550", total, "share-class labels match after trimming")
}

func TestTotalSharesVotingRightsLabel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"000","list":[{"se":"의결권 있는 주식","istc_totqy":"12,345"}]}`)
	})

	total, ok, err := client.TotalShares(context.Background(), "00000001", "2023", "11011")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "12,345", total)
}

func TestTotalSharesAbsentOutcomes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"non-success status", `{"status":"013","message":"조회된 데이타가 없습니다."}`},
		{"no matching row", `{"status":"000","list":[{"se":"우선주","istc_totqy":"1"}]}`},
		{"empty list", `{"status":"000","list":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})

			_, ok, err := client.TotalShares(context.Background(), "00000001", "2023", "11011")
			require.NoError(t, err, "absence is a normal outcome, not an error")
			assert.False(t, ok)
		})
	}
}

func TestMajorShareholderEndToEnd(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hyslrSttus.json", r.URL.Path)
		fmt.Fprint(w, `{
			"status": "000",
			"list": [
				{"stock_knd": "보통주", "nm": "이부자", "relate": "본인", "trmend_posesn_stock_co": "4,985,250", "trmend_posesn_stock_qota_rt": "8.51"},
				{"stock_knd": "보통주", "nm": "계", "relate": "-", "trmend_posesn_stock_co": "9,000,000", "trmend_posesn_stock_qota_rt": "15.2"}
			]
		}`)
	})

	holder, err := client.MajorShareholder(context.Background(), "00126380", "2023", "11011")
	require.NoError(t, err)
	require.NotNil(t, holder)
	assert.Equal(t, "이부자", holder.Name)
	assert.Equal(t, "4,985,250주", holder.Shares)
	assert.Equal(t, "8.51%", holder.Ratio)
}

func TestMajorShareholderNoUsableData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"013","message":"조회된 데이타가 없습니다."}`)
	})

	holder, err := client.MajorShareholder(context.Background(), "00000001", "2023", "11011")
	require.NoError(t, err)
	assert.Nil(t, holder)
}

func TestFinancialsExtractsFixedItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fnlttSinglAcntAll.json", r.URL.Path)
		assert.Equal(t, "CFS", r.URL.Query().Get("fs_div"))
		fmt.Fprint(w, `{
			"status": "000",
			"list": [
				{"account_id": "ifrs-full_Revenue", "account_nm": "수익(매출액)", "thstrm_amount": "258935494000000"},
				{"account_id": "ifrs-full_Revenue", "account_nm": "매출액(중복)", "thstrm_amount": "1"},
				{"account_id": "ifrs-full_Assets", "account_nm": "자산총계", "thstrm_amount": "455905980000000"},
				{"account_id": "ifrs-full_CashAndCashEquivalents", "account_nm": "현금및현금성자산", "thstrm_amount": "-"}
			]
		}`)
	})

	items, err := client.Financials(context.Background(), "00126380", "2023", "11011", "CFS")
	require.NoError(t, err)
	assert.Equal(t, "258,935,494,000,000", items["매출액"], "first matching taxonomy row wins")
	assert.Equal(t, "455,905,980,000,000", items["자산총계"])
	assert.Equal(t, NoData, items["현금및현금성자산"], "non-numeric amounts render as no-data")
	assert.Equal(t, NoData, items["영업이익"], "missing accounts render as no-data")
	assert.Len(t, items, 9)
}

func TestFinancialsNoUsableData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"013","message":"조회된 데이타가 없습니다."}`)
	})

	items, err := client.Financials(context.Background(), "00000001", "2023", "11011", "OFS")
	require.NoError(t, err)
	require.Len(t, items, 9)
	for label, value := range items {
		assert.Equal(t, NoData, value, "item %s", label)
	}
}

func TestAPIErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &APIError{CorpCode: "1", Endpoint: "company.json", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "company.json")
}
