package dart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Profile holds the display-ready company attributes from company.json.
// IndutyCode stays raw; the caller resolves it against the industry table.
type Profile struct {
	Name       string
	CEO        string
	Address    string
	Founded    string
	CorpClass  string
	IndutyCode string
}

type companyResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	StockName  string `json:"stock_name"`
	CeoNm      string `json:"ceo_nm"`
	Adres      string `json:"adres"`
	EstDt      string `json:"est_dt"`
	CorpCls    string `json:"corp_cls"`
	IndutyCode string `json:"induty_code"`
}

var corpClassNames = map[string]string{
	"Y": "유가",
	"K": "코스닥",
	"N": "코넥스",
	"E": "기타",
}

// CompanyProfile fetches basic company attributes for one filer. A non-"000"
// status returns (nil, nil): the caller renders the fields as missing rather
// than failing the whole row.
func (c *Client) CompanyProfile(ctx context.Context, corpCode string) (*Profile, error) {
	body, err := c.get(ctx, "company.json", corpCode, url.Values{})
	if err != nil {
		return nil, err
	}

	var resp companyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &APIError{CorpCode: corpCode, Endpoint: "company.json", Err: fmt.Errorf("decoding response: %w", err)}
	}

	if resp.Status != statusOK {
		return nil, nil
	}

	return &Profile{
		Name:       resp.StockName,
		CEO:        resp.CeoNm,
		Address:    resp.Adres,
		Founded:    formatEstDate(resp.EstDt),
		CorpClass:  corpClassName(resp.CorpCls),
		IndutyCode: resp.IndutyCode,
	}, nil
}

// formatEstDate turns the 8-digit incorporation date into "YYYY년 MM월 DD일".
func formatEstDate(estDt string) string {
	if len(estDt) < 8 {
		return NoData
	}
	return fmt.Sprintf("%s년 %s월 %s일", estDt[:4], estDt[4:6], estDt[6:8])
}

func corpClassName(corpCls string) string {
	if name, ok := corpClassNames[corpCls]; ok {
		return name
	}
	return "알 수 없음"
}
