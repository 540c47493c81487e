// Package api talks to the scraper backend: the paginated product listing,
// the per-product ignore toggle and edit endpoints, and the log page.
package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sw33tLie/shopscope/pkg/catalog"
	"github.com/sw33tLie/shopscope/pkg/whttp"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/net/html"
)

var (
	ErrNoLogContent = errors.New("log content not found in page")
	ErrMalformed    = errors.New("malformed backend response")
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Title      string
}

func (e *StatusError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("%s: backend returned %d (%s)", e.Op, e.StatusCode, e.Title)
	}
	return fmt.Sprintf("%s: backend returned %d", e.Op, e.StatusCode)
}

type Options struct {
	BaseURL  string
	Proxy    string
	Retries  int
	Timeout  time.Duration
	Username string
	Password string
}

type Client struct {
	base    *url.URL
	http    *retryablehttp.Client
	headers []whttp.WHTTPHeader
}

// Chunk is one page of the backend listing.
type Chunk struct {
	Products []*catalog.Product
	Total    int
	Page     int
	PerPage  int
}

func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("backend URL is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend URL: %q", opts.BaseURL)
	}

	httpClient, err := whttp.NewClient(whttp.ClientOptions{
		Proxy:   opts.Proxy,
		Retries: opts.Retries,
		Timeout: opts.Timeout,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{base: base, http: httpClient}
	if opts.Username != "" || opts.Password != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(opts.Username + ":" + opts.Password))
		c.headers = append(c.headers, whttp.WHTTPHeader{Name: "Authorization", Value: "Basic " + auth})
	}
	return c, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) send(ctx context.Context, op string, req *whttp.WHTTPReq) (*whttp.WHTTPRes, error) {
	req.Headers = append(append([]whttp.WHTTPHeader(nil), c.headers...), req.Headers...)
	res, err := whttp.SendHTTPRequest(ctx, req, c.http)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !res.OK() {
		return nil, &StatusError{Op: op, StatusCode: res.StatusCode, Title: res.HTTPTitle}
	}
	return res, nil
}

// FetchProducts requests one page of perPage records.
func (c *Client) FetchProducts(ctx context.Context, page, perPage int) (*Chunk, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	res, err := c.send(ctx, "fetch products", &whttp.WHTTPReq{
		Method:  "GET",
		URL:     c.endpoint("/api/products", q),
		Headers: []whttp.WHTTPHeader{{Name: "Accept", Value: "application/json"}},
	})
	if err != nil {
		return nil, err
	}
	if !gjson.Valid(res.BodyString) {
		return nil, fmt.Errorf("fetch products: %w", ErrMalformed)
	}

	body := gjson.Parse(res.BodyString)
	chunk := &Chunk{
		Total:   int(body.Get("total").Int()),
		Page:    page,
		PerPage: perPage,
	}
	body.Get("products").ForEach(func(_, value gjson.Result) bool {
		chunk.Products = append(chunk.Products, parseProduct(value))
		return true
	})
	return chunk, nil
}

// Product fetches a single record by id.
func (c *Client) Product(ctx context.Context, id int64) (*catalog.Product, error) {
	res, err := c.send(ctx, "fetch product", &whttp.WHTTPReq{
		Method:  "GET",
		URL:     c.endpoint("/api/products/"+strconv.FormatInt(id, 10), nil),
		Headers: []whttp.WHTTPHeader{{Name: "Accept", Value: "application/json"}},
	})
	if err != nil {
		return nil, err
	}
	if !gjson.Valid(res.BodyString) {
		return nil, fmt.Errorf("fetch product: %w", ErrMalformed)
	}
	return parseProduct(gjson.Parse(res.BodyString)), nil
}

// SetIgnore persists the ignore_notifications flag of one product.
func (c *Client) SetIgnore(ctx context.Context, id int64, ignore bool) error {
	flag := 0
	if ignore {
		flag = 1
	}
	payload, err := sjson.SetBytes(nil, "ignore_notifications", flag)
	if err != nil {
		return err
	}
	_, err = c.send(ctx, "update ignore_notifications", &whttp.WHTTPReq{
		Method:  "POST",
		URL:     c.endpoint("/api/products/"+strconv.FormatInt(id, 10)+"/ignore", nil),
		Headers: []whttp.WHTTPHeader{{Name: "Content-Type", Value: "application/json"}},
		Body:    payload,
	})
	return err
}

// EditProduct submits the edit form of one product.
func (c *Client) EditProduct(ctx context.Context, form catalog.EditForm) error {
	_, err := c.send(ctx, "update product", &whttp.WHTTPReq{
		Method:  "POST",
		URL:     c.endpoint("/products/"+strconv.FormatInt(form.ID, 10)+"/edit", nil),
		Headers: []whttp.WHTTPHeader{{Name: "Content-Type", Value: "application/x-www-form-urlencoded"}},
		Body:    []byte(form.Values().Encode()),
	})
	return err
}

// FetchLog downloads the log page at path and returns the text of its
// <pre id="logContent"> element with entities decoded.
func (c *Client) FetchLog(ctx context.Context, path string) (string, error) {
	if path == "" {
		path = "/logs"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	res, err := c.send(ctx, "fetch log", &whttp.WHTTPReq{
		Method: "GET",
		URL:    c.endpoint(path, nil),
	})
	if err != nil {
		return "", err
	}
	return ExtractLog(res.BodyString)
}

// ExtractLog pulls the log text out of a rendered log page.
func ExtractLog(page string) (string, error) {
	root, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse log page: %w", err)
	}
	sel := goquery.NewDocumentFromNode(root).Find("pre#logContent").First()
	if sel.Length() == 0 {
		return "", ErrNoLogContent
	}
	return sel.Text(), nil
}

func parseProduct(r gjson.Result) *catalog.Product {
	str := func(key string) string {
		v := r.Get(key)
		if !v.Exists() || v.Type == gjson.Null {
			return ""
		}
		return v.String()
	}
	return &catalog.Product{
		ID:                  r.Get("id").Int(),
		Title:               str("title"),
		Price:               str("price"),
		Available:           r.Get("available").Bool(),
		Vendor:              str("vendor"),
		AlcoholType:         str("alcohol_type"),
		URL:                 str("url"),
		InputURL:            str("input_url"),
		ImageURL:            str("image_url"),
		PublishedAt:         str("published_at"),
		UpdatedAt:           str("updated_at"),
		CreatedAt:           str("created_at"),
		LastSeen:            str("last_seen"),
		BecameAvailableAt:   str("became_available_at"),
		BecameUnavailableAt: str("became_unavailable_at"),
		DateAdded:           str("date_added"),
		IgnoreNotifications: r.Get("ignore_notifications").Bool(),
	}
}
