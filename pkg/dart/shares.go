package dart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type shareTotalRow struct {
	Se        string `json:"se"`
	IstcTotqy string `json:"istc_totqy"`
}

// TotalShares returns the issued ordinary-share total for one filer and
// period, comma-grouped as DART reports it. A non-"000" status or the
// absence of an ordinary-share row is a normal outcome, not an error.
func (c *Client) TotalShares(ctx context.Context, corpCode string, year string, reprtCode string) (string, bool, error) {
	env, err := c.getList(ctx, "stockTotqySttus.json", corpCode, reportParams(year, reprtCode))
	if err != nil {
		return "", false, err
	}
	if env.Status != statusOK {
		return "", false, nil
	}

	var rows []shareTotalRow
	if err := json.Unmarshal(env.List, &rows); err != nil {
		return "", false, &APIError{CorpCode: corpCode, Endpoint: "stockTotqySttus.json", Err: fmt.Errorf("decoding list: %w", err)}
	}

	for _, row := range rows {
		se := strings.TrimSpace(row.Se)
		if se == "보통주" || se == "의결권 있는 주식" {
			return row.IstcTotqy, true, nil
		}
	}
	return "", false, nil
}
