package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lsm5482-blip/my-coupang-bot/internal/coupang"
	"github.com/lsm5482-blip/my-coupang-bot/internal/coupang/mocks"
	domain "github.com/lsm5482-blip/my-coupang-bot/pkg/types"
)

const searchBody = `{"rCode":"0","data":{"productData":[
	{"productId":1,"productName":"노트북 A","productPrice":900000,"originalPrice":1000000},
	{"productId":2,"productName":"노트북 B","productPrice":500000,"originalPrice":1000000},
	{"productId":3,"productName":"노트북 C","productPrice":700000}
]}}`

func TestSearchProducts(t *testing.T) {
	t.Parallel()

	records := map[string]*domain.PriceRecord{
		"1": {Prices: []int64{950000, 900000}},
		"2": {Prices: []int64{450000}},
	}

	tests := []struct {
		name    string
		records map[string]*domain.PriceRecord
		wantLow map[string]bool
	}{
		{
			name:    "flags against stored lows",
			records: records,
			wantLow: map[string]bool{"1": true, "2": false, "3": true},
		},
		{
			name:    "no history leaves products unflagged",
			wantLow: map[string]bool{"1": false, "2": false, "3": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mc := mocks.NewMockClient(t)
			mc.EXPECT().
				Do(mock.Anything, mock.MatchedBy(func(r coupang.Request) bool {
					return r.Endpoint == "search" && r.Query.Get("keyword") == "노트북" && r.Query.Get("limit") == "3"
				})).
				Return([]byte(searchBody), nil).
				Once()

			got, err := searchProducts(context.Background(), coupang.NewProductsAPI(mc, ""),
				"노트북", 3, tt.records, testLog)
			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.Equal(t, "2", got[0].ProductID, "sorted by discount")

			for _, p := range got {
				assert.Equal(t, tt.wantLow[p.ProductID], p.IsAllTimeLow, p.ProductID)
			}
		})
	}

	assert.Equal(t, []int64{950000, 900000}, records["1"].Prices, "search must not record prices")
}

func TestSearchProducts_Error(t *testing.T) {
	t.Parallel()

	mc := mocks.NewMockClient(t)
	mc.EXPECT().Do(mock.Anything, mock.Anything).
		Return(nil, &coupang.APIError{Kind: coupang.KindServer, Method: http.MethodGet, Path: "/p"}).
		Once()

	_, err := searchProducts(context.Background(), coupang.NewProductsAPI(mc, ""), "x", 1, nil, testLog)
	require.ErrorIs(t, err, coupang.ErrServer)
	assert.Contains(t, err.Error(), `searching "x"`)
}

func TestTrackingLinks(t *testing.T) {
	t.Parallel()

	mc := mocks.NewMockClient(t)
	mc.EXPECT().
		Do(mock.Anything, mock.MatchedBy(func(r coupang.Request) bool {
			return r.Method == http.MethodPost && r.Endpoint == "deeplink"
		})).
		Return([]byte(`{"rCode":"0","data":[{"originalUrl":"https://www.coupang.com/vp/products/1",`+
			`"shortenUrl":"https://link.coupang.com/a/abc"}]}`), nil).
		Once()

	links, err := trackingLinks(context.Background(), coupang.NewProductsAPI(mc, "ch1"),
		[]string{"https://www.coupang.com/vp/products/1"})
	require.NoError(t, err)
	require.Len(t, links, 1)

	var buf bytes.Buffer
	require.NoError(t, printDeeplinkTable(&buf, links))
	assert.Contains(t, buf.String(), "https://link.coupang.com/a/abc")
}

func TestTrackingLinks_Error(t *testing.T) {
	t.Parallel()

	mc := mocks.NewMockClient(t)
	mc.EXPECT().Do(mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()

	_, err := trackingLinks(context.Background(), coupang.NewProductsAPI(mc, ""), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating deeplinks")
}

func TestPrintSearchTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, printSearchTable(&buf, []domain.EvaluatedProduct{
		{ProductID: "7", Name: "모니터", OriginalPrice: 300000, SalePrice: 240000, DiscountRate: 20, IsAllTimeLow: true},
		{ProductID: "8", Name: "키보드", OriginalPrice: 50000, SalePrice: 50000},
	}))

	out := buf.String()
	assert.Contains(t, out, "240,000원")
	assert.Contains(t, out, "20%")
	assert.Contains(t, out, "yes")
	assert.Contains(t, out, "키보드")
}
