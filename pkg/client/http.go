package client

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/formdeck/formd/internal/formdef"
)

// Client provides REST access to the Formdeck API.
type Client interface {
	List(ctx context.Context) ([]formdef.FormDefinition, error)
	Get(ctx context.Context, id int64) (*formdef.FormDefinition, error)
	Create(ctx context.Context, body map[string]any) (*formdef.FormDefinition, error)
	Update(ctx context.Context, id int64, body map[string]any) (*formdef.FormDefinition, error)
	Delete(ctx context.Context, id int64) error
	UpdateStructure(ctx context.Context, id int64, configuration any) error
	Login(ctx context.Context, username, password string) (string, error)
}

type httpClient struct {
	base string
	http *resty.Client
	log  *zap.SugaredLogger
}

type Option func(*httpClient)

// WithToken sets the Authorization token
func WithToken(tok string) Option {
	return func(c *httpClient) {
		c.http.SetAuthToken(tok)
	}
}

// WithLogger sets a logger for request tracing.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *httpClient) {
		c.log = l
	}
}

// NewHTTP returns a new Client for the given base URL.
func NewHTTP(base string, opts ...Option) Client {
	c := &httpClient{base: base, http: resty.New(), log: zap.NewNop().Sugar()}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) List(ctx context.Context) ([]formdef.FormDefinition, error) {
	var out []formdef.FormDefinition
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(c.base + "/v1/forms")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	c.log.Debugw("listed forms", "count", len(out))
	return out, nil
}

func (c *httpClient) Get(ctx context.Context, id int64) (*formdef.FormDefinition, error) {
	var out formdef.FormDefinition
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(fmt.Sprintf("%s/v1/forms/%d", c.base, id))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return &out, nil
}

func (c *httpClient) Create(ctx context.Context, body map[string]any) (*formdef.FormDefinition, error) {
	var out formdef.FormDefinition
	resp, err := c.http.R().SetContext(ctx).SetBody(body).SetResult(&out).Post(c.base + "/v1/forms")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	c.log.Debugw("created form", "id", out.ID)
	return &out, nil
}

func (c *httpClient) Update(ctx context.Context, id int64, body map[string]any) (*formdef.FormDefinition, error) {
	var out formdef.FormDefinition
	resp, err := c.http.R().SetContext(ctx).SetBody(body).SetResult(&out).Put(fmt.Sprintf("%s/v1/forms/%d", c.base, id))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return &out, nil
}

func (c *httpClient) Delete(ctx context.Context, id int64) error {
	resp, err := c.http.R().SetContext(ctx).Delete(fmt.Sprintf("%s/v1/forms/%d", c.base, id))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return restyErr(resp)
	}
	return nil
}

func (c *httpClient) UpdateStructure(ctx context.Context, id int64, configuration any) error {
	body := map[string]any{"configuration": configuration}
	resp, err := c.http.R().SetContext(ctx).SetBody(body).Post(fmt.Sprintf("%s/v1/forms/%d/structure", c.base, id))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return restyErr(resp)
	}
	return nil
}

func (c *httpClient) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&out).
		Post(c.base + "/v1/auth/login")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", restyErr(resp)
	}
	c.http.SetAuthToken(out.AccessToken)
	return out.AccessToken, nil
}

func restyErr(resp *resty.Response) error {
	return fmt.Errorf("%s", resp.Status())
}
