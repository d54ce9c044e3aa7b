package dart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(stockKnd, nm, relate, count, ratio string) map[string]string {
	return map[string]string{
		"stock_knd":                   stockKnd,
		"nm":                          nm,
		"relate":                      relate,
		"trmend_posesn_stock_co":      count,
		"trmend_posesn_stock_qota_rt": ratio,
	}
}

func TestSelectMajorShareholderWellFormed(t *testing.T) {
	records := []map[string]string{
		record("보통주", "홍길동", "본인", "1,000,000", "10.5"),
		record("보통주", "김철수", "친인척", "250,000", "2.6"),
		record("보통주", "계", "-", "1,250,000", "13.1"),
	}

	got := SelectMajorShareholder(records)
	require.NotNil(t, got)
	assert.Equal(t, "홍길동", got.Name)
	assert.Equal(t, "1,000,000주", got.Shares)
	assert.Equal(t, "10.5%", got.Ratio)
}

func TestSelectMajorShareholderSwapsTransposedColumns(t *testing.T) {
	// stock_knd and nm transposed upstream; relate holds the real name.
	records := []map[string]string{
		record("이재용", "보통주", "본인", "2,000,000", "20.1"),
	}

	got := SelectMajorShareholder(records)
	require.NotNil(t, got)
	assert.Equal(t, "본인", got.Name, "second swap must restore nm from relate")
	assert.Equal(t, "2,000,000주", got.Shares)
	assert.Equal(t, "20.1%", got.Ratio)
}

func TestSelectMajorShareholderNeverSwapsValidRecords(t *testing.T) {
	// nm happens to be a valid class label, but stock_knd is already valid:
	// the record is well formed and must pass through untouched.
	records := []map[string]string{
		record("보통주", "우선주", "본인", "500,000", "5.0"),
	}

	got := SelectMajorShareholder(records)
	require.NotNil(t, got)
	assert.Equal(t, "우선주", got.Name)
}

func TestSelectMajorShareholderSecondSwapOnlyForSwappedSelection(t *testing.T) {
	// The transposed row loses on share count; the winner is well formed
	// and must not get the relate swap.
	records := []map[string]string{
		record("박영희", "보통주", "특수관계인", "100,000", "1.0"),
		record("보통주", "최대주", "본인", "900,000", "9.0"),
	}

	got := SelectMajorShareholder(records)
	require.NotNil(t, got)
	assert.Equal(t, "최대주", got.Name)
	assert.Equal(t, "900,000주", got.Shares)
}

func TestSelectMajorShareholderTieKeepsFirst(t *testing.T) {
	records := []map[string]string{
		record("보통주", "갑", "본인", "100", "1.0"),
		record("보통주", "을", "본인", "250", "2.5"),
		record("보통주", "병", "친인척", "250", "2.5"),
	}

	got := SelectMajorShareholder(records)
	require.NotNil(t, got)
	assert.Equal(t, "을", got.Name, "ties break to the first-encountered record")
}

func TestSelectMajorShareholderFiltersKindsAndAggregateRow(t *testing.T) {
	records := []map[string]string{
		record("우선주", "우선주주주", "본인", "9,999,999", "50.0"),
		record("보통주", "계", "-", "5,000,000", "40.0"),
		record("의결권 있는 주식", "의결권주주", "본인", "300,000", "3.0"),
	}

	got := SelectMajorShareholder(records)
	require.NotNil(t, got)
	assert.Equal(t, "의결권주주", got.Name, "preferred shares and the 계 row are excluded from selection")
}

func TestSelectMajorShareholderNoQualifyingRecords(t *testing.T) {
	records := []map[string]string{
		record("우선주", "누군가", "본인", "1,000", "0.1"),
		record("보통주", "계", "-", "1,000", "0.1"),
	}
	assert.Nil(t, SelectMajorShareholder(records))
	assert.Nil(t, SelectMajorShareholder(nil))
}

func TestSelectMajorShareholderDeterministic(t *testing.T) {
	build := func() []map[string]string {
		return []map[string]string{
			record("보통주", "갑", "본인", "700,000", "7.0"),
			record("김영수", "보통주", "본인", "700,000", "7.0"),
			record("보통주", "병", "친인척", "100", "0.0"),
		}
	}

	first := SelectMajorShareholder(build())
	require.NotNil(t, first)
	for i := 0; i < 10; i++ {
		again := SelectMajorShareholder(build())
		require.NotNil(t, again)
		assert.Equal(t, first, again)
	}
}

func TestSelectMajorShareholderMalformedCountRanksZero(t *testing.T) {
	records := []map[string]string{
		record("보통주", "갑", "본인", "n/a", "0.0"),
		record("보통주", "을", "본인", "10", "0.1"),
	}

	got := SelectMajorShareholder(records)
	require.NotNil(t, got)
	assert.Equal(t, "을", got.Name)
	assert.Equal(t, "10주", got.Shares)
}
