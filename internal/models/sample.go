package models

import "time"

// SampleCryptos returns a fixed market snapshot used by the simulation CLI
// and the seeder when no live data is available.
func SampleCryptos() []Crypto {
	return []Crypto{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC", Price: 50345.67, PriceChangePercentage24h: 2.34, ImageURL: "https://example.com/bitcoin.png"},
		{ID: "ethereum", Name: "Ethereum", Symbol: "ETH", Price: 2456.78, PriceChangePercentage24h: -1.23, ImageURL: "https://example.com/ethereum.png"},
		{ID: "cardano", Name: "Cardano", Symbol: "ADA", Price: 1.45, PriceChangePercentage24h: 5.67, ImageURL: "https://example.com/cardano.png"},
		{ID: "solana", Name: "Solana", Symbol: "SOL", Price: 123.45, PriceChangePercentage24h: 8.91, ImageURL: "https://example.com/solana.png"},
		{ID: "binancecoin", Name: "Binance Coin", Symbol: "BNB", Price: 345.67, PriceChangePercentage24h: -0.45, ImageURL: "https://example.com/binance.png"},
		{ID: "ripple", Name: "XRP", Symbol: "XRP", Price: 0.78, PriceChangePercentage24h: 3.21, ImageURL: "https://example.com/xrp.png"},
		{ID: "polkadot", Name: "Polkadot", Symbol: "DOT", Price: 23.45, PriceChangePercentage24h: -2.34, ImageURL: "https://example.com/polkadot.png"},
		{ID: "dogecoin", Name: "Dogecoin", Symbol: "DOGE", Price: 0.12, PriceChangePercentage24h: 12.34, ImageURL: "https://example.com/dogecoin.png"},
		{ID: "avalanche", Name: "Avalanche", Symbol: "AVAX", Price: 78.90, PriceChangePercentage24h: 4.56, ImageURL: "https://example.com/avalanche.png"},
		{ID: "chainlink", Name: "Chainlink", Symbol: "LINK", Price: 15.67, PriceChangePercentage24h: -3.45, ImageURL: "https://example.com/chainlink.png"},
	}
}

// SampleAlerts returns a handful of demo alerts against the sample snapshot.
func SampleAlerts() []Alert {
	now := time.Now()
	return []Alert{
		{ID: "1", CryptoName: "Bitcoin", CryptoSymbol: "BTC", Threshold: 70000.0, IsUpperBound: true, IsEnabled: true, CreatedAt: now},
		{ID: "2", CryptoName: "Ethereum", CryptoSymbol: "ETH", Threshold: 4000.0, IsUpperBound: false, IsEnabled: true, CreatedAt: now},
		{ID: "3", CryptoName: "Solana", CryptoSymbol: "SOL", Threshold: 150.0, IsUpperBound: true, IsEnabled: true, CreatedAt: now},
		{ID: "4", CryptoName: "Cardano", CryptoSymbol: "ADA", Threshold: 1.0, IsUpperBound: false, IsEnabled: true, CreatedAt: now},
		{ID: "5", CryptoName: "Dogecoin", CryptoSymbol: "DOGE", Threshold: 0.25, IsUpperBound: true, IsEnabled: true, CreatedAt: now},
	}
}
