package whttp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
)

const userAgent = "shopscope/1.0 (+https://github.com/sw33tLie/shopscope)"

type WHTTPHeader struct {
	Name  string
	Value string
}

type WHTTPReq struct {
	URL     string
	Method  string
	Headers []WHTTPHeader
	Body    []byte
}

type WHTTPRes struct {
	StatusCode  int
	ContentType string
	HTTPTitle   string
	BodyString  string
}

// OK reports a 2xx status.
func (r *WHTTPRes) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ClientOptions configures NewClient.
type ClientOptions struct {
	Proxy   string
	Retries int
	Timeout time.Duration
}

// NewClient builds the retryablehttp client every request goes through.
// Retries default to zero: a failed call is reported, not repeated.
func NewClient(opts ClientOptions) (*retryablehttp.Client, error) {
	client := retryablehttp.NewClient()
	client.Logger = log.New(io.Discard, "", 0)
	client.RetryMax = opts.Retries
	if client.RetryMax < 0 {
		client.RetryMax = 0
	}
	// Hand the final response back instead of a "giving up" error so callers
	// see the real status code.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %v", err)
		}
		transport, ok := client.HTTPClient.Transport.(*http.Transport)
		if !ok {
			transport = http.DefaultTransport.(*http.Transport).Clone()
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		client.HTTPClient.Transport = transport
	}
	return client, nil
}

func SendHTTPRequest(ctx context.Context, wReq *WHTTPReq, client *retryablehttp.Client) (wRes *WHTTPRes, err error) {
	var body interface{}
	if wReq.Body != nil {
		body = bytes.NewReader(wReq.Body)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, wReq.Method, wReq.URL, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cache-Control", "no-transform")
	req.Header.Set("Accept-Language", "en")

	for _, h := range wReq.Headers {
		req.Header.Set(h.Name, h.Value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	wRes = &WHTTPRes{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		BodyString:  string(bodyBytes),
	}

	if strings.Contains(wRes.ContentType, "html") {
		if title, ok := getHTMLTitle(wRes.BodyString); ok {
			wRes.HTTPTitle = strings.ToValidUTF8(strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(title, "\n", ""), "\r", "")), "")
		}
	}

	return wRes, nil
}

func isTitleElement(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "title"
}

func traverse(n *html.Node) (string, bool) {
	if isTitleElement(n) {
		if n.FirstChild != nil {
			return n.FirstChild.Data, true
		}
		return "", true
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		result, ok := traverse(c)
		if ok {
			return result, ok
		}
	}

	return "", false
}

func getHTMLTitle(requestBody string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(requestBody))
	if err != nil {
		return "", false
	}

	return traverse(doc)
}
