package feed

import (
	"context"
	"fmt"
	"strconv"

	"resty.dev/v3"
)

// RestyClient implements Client over the server's HTTP API. The server
// derives the feed owner from the bearer token, so the UserID carried in the
// params is not sent on the wire.
type RestyClient struct {
	http *resty.Client
}

// NewRestyClient builds a transport against baseURL authenticating with the
// given bearer token.
func NewRestyClient(baseURL, token string) *RestyClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token)
	return &RestyClient{http: client}
}

// Close releases idle connections.
func (c *RestyClient) Close() error { return c.http.Close() }

type listEnvelope struct {
	Data     []Notification `json:"data"`
	Metadata struct {
		Total   int  `json:"total"`
		Page    int  `json:"page"`
		PerPage int  `json:"per_page"`
		HasMore bool `json:"has_more"`
	} `json:"metadata"`
}

func (c *RestyClient) List(ctx context.Context, p ListParams) (Page, error) {
	return c.list(ctx, p.Limit, p.Offset, nil)
}

func (c *RestyClient) ListFiltered(ctx context.Context, p FilteredParams) (Page, error) {
	return c.list(ctx, p.Limit, p.Offset, &p.Filters)
}

func (c *RestyClient) list(ctx context.Context, limit, offset int, filters *Filters) (Page, error) {
	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("limit", strconv.Itoa(limit))
	if filters != nil {
		for key, vals := range EncodeQuery(*filters) {
			req.SetQueryParam(key, vals[0])
		}
	}

	var env listEnvelope
	res, err := req.SetResult(&env).Get("/notifications")
	if err != nil {
		return Page{}, err
	}
	if res.IsError() {
		return Page{}, fmt.Errorf("feed: list failed: %s", res.Status())
	}
	return Page{
		Items: env.Data,
		Pagination: Pagination{
			CurrentPage: env.Metadata.Page,
			TotalCount:  env.Metadata.Total,
			HasMore:     env.Metadata.HasMore,
			PageSize:    env.Metadata.PerPage,
		},
	}, nil
}

func (c *RestyClient) Recent(ctx context.Context, p RecentParams) (Page, error) {
	var env listEnvelope
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(p.Limit)).
		SetResult(&env).
		Get("/notifications/recent")
	if err != nil {
		return Page{}, err
	}
	if res.IsError() {
		return Page{}, fmt.Errorf("feed: recent failed: %s", res.Status())
	}
	return Page{Items: env.Data}, nil
}

func (c *RestyClient) MarkRead(ctx context.Context, _ string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	var res *resty.Response
	var err error
	if len(ids) == 1 {
		res, err = c.http.R().SetContext(ctx).Patch("/notifications/" + ids[0] + "/read")
	} else {
		res, err = c.http.R().SetContext(ctx).
			SetBody(map[string][]string{"ids": ids}).
			Patch("/notifications/read")
	}
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("feed: mark read failed: %s", res.Status())
	}
	return nil
}

func (c *RestyClient) Delete(ctx context.Context, _ string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	var res *resty.Response
	var err error
	if len(ids) == 1 {
		res, err = c.http.R().SetContext(ctx).Delete("/notifications/" + ids[0])
	} else {
		res, err = c.http.R().SetContext(ctx).
			SetBody(map[string][]string{"ids": ids}).
			Post("/notifications/bulk-delete")
	}
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("feed: delete failed: %s", res.Status())
	}
	return nil
}
