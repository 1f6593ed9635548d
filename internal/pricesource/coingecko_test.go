package pricesource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptotracker/internal/models"
)

const marketsResponse = `[
	{"id":"bitcoin","symbol":"btc","name":"Bitcoin","image":"https://example.com/btc.png","current_price":50345.67,"price_change_percentage_24h":2.34},
	{"id":"ethereum","symbol":"eth","name":"Ethereum","image":"https://example.com/eth.png","current_price":2456.78,"price_change_percentage_24h":-1.23},
	{"id":"broken","symbol":"bad","name":"Broken","image":"","current_price":0,"price_change_percentage_24h":0}
]`

func TestCoinGecko_FetchPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "10", r.URL.Query().Get("per_page"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(marketsResponse))
	}))
	defer srv.Close()

	src := NewCoinGecko(srv.URL, 10)
	cryptos, err := src.FetchPrices(context.Background())
	require.NoError(t, err)

	// The zero-price entry must be dropped.
	require.Len(t, cryptos, 2)
	assert.Equal(t, "bitcoin", cryptos[0].ID)
	assert.Equal(t, "BTC", cryptos[0].Symbol)
	assert.Equal(t, 50345.67, cryptos[0].Price)
	assert.Equal(t, -1.23, cryptos[1].PriceChangePercentage24h)
}

func TestCoinGecko_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src := NewCoinGecko(srv.URL, 10)
	_, err := src.FetchPrices(context.Background())
	assert.Error(t, err)
}

func TestCoinGecko_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"`))
	}))
	defer srv.Close()

	src := NewCoinGecko(srv.URL, 10)
	_, err := src.FetchPrices(context.Background())
	assert.Error(t, err)
}

func TestCoinGecko_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewCoinGecko(srv.URL, 10)
	_, err := src.FetchPrices(ctx)
	assert.Error(t, err)
}

func TestStatic_FetchPricesCopies(t *testing.T) {
	src := Static{Cryptos: []models.Crypto{{ID: "bitcoin", Symbol: "BTC", Price: 50000}}}
	got, err := src.FetchPrices(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	got[0].Price = 1
	again, _ := src.FetchPrices(context.Background())
	assert.Equal(t, 50000.0, again[0].Price)
}
