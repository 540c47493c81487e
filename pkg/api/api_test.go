package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw33tLie/shopscope/pkg/catalog"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestFetchProducts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "5000", r.URL.Query().Get("per_page"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"products": [
				{"id": 11, "title": "Blanton's", "price": 64.99, "available": 1, "vendor": "Buffalo Trace",
				 "alcohol_type": "Bourbon", "ignore_notifications": 0, "image_url": null, "updated_at": "2024-01-01 10:00:00"},
				{"id": 12, "title": "Weller", "price": "29.99", "available": false, "ignore_notifications": true}
			],
			"total": 7001, "page": 2, "per_page": 5000
		}`)
	})

	chunk, err := c.FetchProducts(context.Background(), 2, 5000)
	require.NoError(t, err)

	assert.Equal(t, 7001, chunk.Total)
	require.Len(t, chunk.Products, 2)
	assert.Equal(t, &catalog.Product{
		ID: 11, Title: "Blanton's", Price: "64.99", Available: true, Vendor: "Buffalo Trace",
		AlcoholType: "Bourbon", UpdatedAt: "2024-01-01 10:00:00",
	}, chunk.Products[0])
	assert.Equal(t, "29.99", chunk.Products[1].Price)
	assert.False(t, chunk.Products[1].Available)
	assert.True(t, chunk.Products[1].IgnoreNotifications)
	assert.Empty(t, chunk.Products[1].Vendor)
}

func TestFetchProductsStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "<html><head><title>500 Internal Server Error</title></head><body>boom</body></html>")
	})

	_, err := c.FetchProducts(context.Background(), 1, 5000)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "500 Internal Server Error", se.Title)
}

func TestFetchProductsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "{not json")
	})
	_, err := c.FetchProducts(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestSetIgnore(t *testing.T) {
	var got map[string]int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/products/42/ignore", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.SetIgnore(context.Background(), 42, true))
	assert.Equal(t, map[string]int{"ignore_notifications": 1}, got)
}

func TestEditProduct(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/9/edit", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "New & Improved", r.PostForm.Get("title"))
		assert.Equal(t, "0", r.PostForm.Get("available"))
		assert.Equal(t, "Scotch", r.PostForm.Get("alcohol_type"))
		assert.Equal(t, "1", r.PostForm.Get("ignore_notifications"))
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.EditProduct(context.Background(), catalog.EditForm{
		ID: 9, Title: "New & Improved", Price: "12", AlcoholType: "Scotch", IgnoreNotifications: true,
	})
	require.NoError(t, err)
}

func TestEditProductFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	err := c.EditProduct(context.Background(), catalog.EditForm{ID: 1})

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestBasicAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, `{"id": 3, "title": "T"}`)
	}))
	defer srv.Close()

	c, err := NewClient(Options{BaseURL: srv.URL + "/", Username: "admin", Password: "secret"})
	require.NoError(t, err)
	p, err := c.Product(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "T", p.Title)
}

func TestFetchLog(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/logs", r.URL.Path)
		io.WriteString(w, `<html><body><pre id="logContent" class="log">line &lt;1&gt;
a &amp; b</pre></body></html>`)
	})

	text, err := c.FetchLog(context.Background(), "logs")
	require.NoError(t, err)
	assert.Equal(t, "line <1>\na & b", text)
}

func TestExtractLogMissing(t *testing.T) {
	_, err := ExtractLog("<html><body><p>nothing</p></body></html>")
	assert.ErrorIs(t, err, ErrNoLogContent)
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Options{})
	assert.Error(t, err)
	_, err = NewClient(Options{BaseURL: "not a url"})
	assert.Error(t, err)
	_, err = NewClient(Options{BaseURL: "http://127.0.0.1:5000", Proxy: "://bad"})
	assert.Error(t, err)
}
