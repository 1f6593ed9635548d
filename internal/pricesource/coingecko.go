package pricesource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cryptotracker/internal/models"
)

// coinGeckoDTO mirrors one entry of the /coins/markets response.
type coinGeckoDTO struct {
	ID                       string  `json:"id"`
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	Image                    string  `json:"image"`
	CurrentPrice             float64 `json:"current_price"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
}

// CoinGecko fetches market data from the CoinGecko REST API.
type CoinGecko struct {
	baseURL    string
	perPage    int
	httpClient *http.Client
}

func NewCoinGecko(baseURL string, perPage int) *CoinGecko {
	return &CoinGecko{
		baseURL: strings.TrimRight(baseURL, "/"),
		perPage: perPage,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchPrices calls /coins/markets and maps the response to the domain model.
func (c *CoinGecko) FetchPrices(ctx context.Context) ([]models.Crypto, error) {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("per_page", strconv.Itoa(c.perPage))
	q.Set("page", "1")
	q.Set("sparkline", "false")
	q.Set("order", "market_cap_desc")
	q.Set("price_change_percentage", "24h")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/coins/markets?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("coingecko fetch failed status=%d body=%s", resp.StatusCode, string(raw))
	}

	var dtos []coinGeckoDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("decode coingecko response: %w", err)
	}

	cryptos := make([]models.Crypto, 0, len(dtos))
	for _, dto := range dtos {
		if dto.CurrentPrice <= 0 {
			// A zero or negative quote violates the snapshot invariant.
			continue
		}
		cryptos = append(cryptos, models.Crypto{
			ID:                       dto.ID,
			Name:                     dto.Name,
			Symbol:                   strings.ToUpper(dto.Symbol),
			Price:                    dto.CurrentPrice,
			PriceChangePercentage24h: dto.PriceChangePercentage24h,
			ImageURL:                 dto.Image,
		})
	}
	return cryptos, nil
}
