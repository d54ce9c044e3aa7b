package dart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://opendart.fss.or.kr/api"

// NoData is the display value for any field that could not be fetched.
const NoData = "정보 없음"

// statusOK is the envelope code DART uses for a usable response. Anything
// else ("013" no data, "020" quota exceeded, ...) means no usable data.
const statusOK = "000"

type Config struct {
	BaseURL string
	ApiKey  string
	Timeout time.Duration
}

type Client struct {
	Config  *Config
	Client  *http.Client
	Logger  *zap.Logger
	limiter *rate.Limiter
}

func NewClient(config *Config, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		Config: config,
		Client: &http.Client{Timeout: timeout},
		Logger: logger,
		// DART allows 1,000 calls per minute per key. Stay well under.
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}
}

// APIError reports a transport or decode failure against one endpoint for
// one filer. Non-"000" envelope statuses are not APIErrors.
type APIError struct {
	CorpCode string
	Endpoint string
	Err      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dart %s (corp %s): %v", e.Endpoint, e.CorpCode, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// envelope is the wrapper common to every list-shaped DART response.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	List    json.RawMessage `json:"list"`
}

// get performs one API call and returns the raw body. The credential goes
// into the query string and must never appear in logs.
func (c *Client) get(ctx context.Context, endpoint string, corpCode string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &APIError{CorpCode: corpCode, Endpoint: endpoint, Err: err}
	}

	params.Set("crtfc_key", c.Config.ApiKey)
	params.Set("corp_code", corpCode)
	reqUrl := c.Config.BaseURL + "/" + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl, nil)
	if err != nil {
		return nil, &APIError{CorpCode: corpCode, Endpoint: endpoint, Err: err}
	}

	res, err := c.Client.Do(req)
	if err != nil {
		// Transport errors echo the full request URL; scrub the credential
		// before it can reach logs or diagnostics.
		return nil, &APIError{CorpCode: corpCode, Endpoint: endpoint, Err: redactKey(err, c.Config.ApiKey)}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &APIError{CorpCode: corpCode, Endpoint: endpoint, Err: fmt.Errorf("reading response: %w", err)}
	}

	if res.StatusCode != http.StatusOK {
		return nil, &APIError{CorpCode: corpCode, Endpoint: endpoint, Err: fmt.Errorf("unexpected status %s", res.Status)}
	}

	return body, nil
}

// getList performs one API call and decodes the standard envelope.
func (c *Client) getList(ctx context.Context, endpoint string, corpCode string, params url.Values) (*envelope, error) {
	body, err := c.get(ctx, endpoint, corpCode, params)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &APIError{CorpCode: corpCode, Endpoint: endpoint, Err: fmt.Errorf("decoding response: %w", err)}
	}

	c.Logger.Debug("dart response",
		zap.String("endpoint", endpoint),
		zap.String("corp_code", corpCode),
		zap.String("status", env.Status))

	return &env, nil
}

func redactKey(err error, apiKey string) error {
	if apiKey == "" {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), apiKey, "***"))
}

func reportParams(year string, reprtCode string) url.Values {
	return url.Values{
		"bsns_year":  {year},
		"reprt_code": {reprtCode},
	}
}
