package coupang

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// APIPrefix is the path prefix of every Partners open API endpoint.
const APIPrefix = "/v2/providers/affiliate_open_api/apis/openapi/v1"

const (
	goldboxPath      = APIPrefix + "/products/goldbox"
	bestCategoryPath = APIPrefix + "/products/bestcategories/"
	searchPath       = APIPrefix + "/products/search"
	deeplinkPath     = APIPrefix + "/deeplink"

	rCodeOK = "0"
)

// ProductSource is the subset of the Partners API the fetch engine needs.
type ProductSource interface {
	Goldbox(ctx context.Context) ([]RawListing, error)
	BestCategory(ctx context.Context, categoryID string, limit int) ([]RawListing, error)
}

// ProductsAPI exposes typed Partners endpoints on top of a Client.
type ProductsAPI struct {
	client Client
	subID  string
}

// NewProductsAPI creates a ProductsAPI. subID is attached to every request so
// generated links are attributed to the channel.
func NewProductsAPI(c Client, subID string) *ProductsAPI {
	return &ProductsAPI{client: c, subID: subID}
}

// Goldbox returns the featured daily-deal listings.
func (a *ProductsAPI) Goldbox(ctx context.Context) ([]RawListing, error) {
	q := url.Values{}
	if a.subID != "" {
		q.Set("subId", a.subID)
	}
	return a.listings(ctx, Request{
		Method:   http.MethodGet,
		Path:     goldboxPath,
		Query:    q,
		Endpoint: "goldbox",
	})
}

// BestCategory returns the best-selling listings for a category. limit <= 0
// leaves the API default in place.
func (a *ProductsAPI) BestCategory(
	ctx context.Context,
	categoryID string,
	limit int,
) ([]RawListing, error) {
	path := bestCategoryPath + url.PathEscape(categoryID)
	if categoryID == "" {
		return nil, &APIError{
			Kind:   KindClient,
			Method: http.MethodGet,
			Path:   path,
			Err:    errors.New("category id is empty"),
		}
	}

	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if a.subID != "" {
		q.Set("subId", a.subID)
	}
	return a.listings(ctx, Request{
		Method:   http.MethodGet,
		Path:     path,
		Query:    q,
		Endpoint: "bestcategories",
	})
}

// Search returns listings matching keyword.
func (a *ProductsAPI) Search(ctx context.Context, keyword string, limit int) ([]RawListing, error) {
	q := url.Values{}
	q.Set("keyword", keyword)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if a.subID != "" {
		q.Set("subId", a.subID)
	}
	return a.listings(ctx, Request{
		Method:   http.MethodGet,
		Path:     searchPath,
		Query:    q,
		Endpoint: "search",
	})
}

// Deeplink converts plain Coupang URLs into tracking links. This is the
// body-signed POST form of the API.
func (a *ProductsAPI) Deeplink(ctx context.Context, urls []string) ([]Deeplink, error) {
	body, err := a.client.Do(ctx, Request{
		Method:   http.MethodPost,
		Path:     deeplinkPath,
		Body:     deeplinkRequest{CoupangURLs: urls, SubID: a.subID},
		Endpoint: "deeplink",
	})
	if err != nil {
		return nil, err
	}

	var resp deeplinkResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &APIError{
			Kind:   KindParsing,
			Method: http.MethodPost,
			Path:   deeplinkPath,
			Err:    fmt.Errorf("parsing deeplink response: %w", err),
		}
	}
	if resp.RCode != "" && resp.RCode != rCodeOK {
		return nil, &APIError{
			Kind:   KindClient,
			Method: http.MethodPost,
			Path:   deeplinkPath,
			Err:    fmt.Errorf("rCode %s: %s", resp.RCode, resp.RMessage),
		}
	}
	return resp.Data, nil
}

func (a *ProductsAPI) listings(ctx context.Context, req Request) ([]RawListing, error) {
	body, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	items, err := DecodeListings(body)
	if err != nil {
		kind := KindParsing
		if errors.Is(err, errRejected) {
			kind = KindClient
		}
		return nil, &APIError{
			Kind:   kind,
			Method: req.Method,
			Path:   req.Path,
			Err:    err,
		}
	}
	return items, nil
}

var errRejected = errors.New("request rejected by API")

// DecodeListings extracts the product list from any of the response shapes
// the API has used: a bare array, {"data": [...]}, {"data": {"productData":
// [...]}}, {"data": {"products": [...]}} or {"products": [...]}. A non-zero
// rCode is reported as a rejection.
func DecodeListings(body []byte) ([]RawListing, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("parsing listings response: %w", err)
	}

	switch v := root.(type) {
	case []any:
		return toListings(v), nil
	case map[string]any:
		if code, ok := v["rCode"]; ok && fmt.Sprint(code) != rCodeOK {
			return nil, fmt.Errorf("%w: rCode %v: %v", errRejected, code, v["rMessage"])
		}
		if items, ok := findProducts(v); ok {
			return toListings(items), nil
		}
		if _, ok := v["rCode"]; ok {
			if data, present := v["data"]; !present || data == nil {
				return []RawListing{}, nil
			}
		}
		return nil, errors.New("parsing listings response: no product list found")
	default:
		return nil, fmt.Errorf("parsing listings response: unexpected %T", root)
	}
}

func findProducts(obj map[string]any) ([]any, bool) {
	switch data := obj["data"].(type) {
	case []any:
		return data, true
	case map[string]any:
		for _, key := range []string{"productData", "products"} {
			if items, ok := data[key].([]any); ok {
				return items, true
			}
		}
	}
	if items, ok := obj["products"].([]any); ok {
		return items, true
	}
	return nil, false
}

func toListings(items []any) []RawListing {
	out := make([]RawListing, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, RawListing(m))
		}
	}
	return out
}
