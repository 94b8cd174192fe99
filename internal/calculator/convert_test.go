package calculator

import (
	"testing"

	"paperdash/internal/model"
)

func cryptoPage() model.PageData {
	page := model.PageData{Valid: true}
	page.Assets[0] = model.AssetRecord{DisplaySymbol: "BTC", Price: 50000, Valid: true}
	page.Assets[1] = model.AssetRecord{DisplaySymbol: "ETH", Price: 3000, Valid: true}
	page.Assets[2] = model.AssetRecord{DisplaySymbol: "SOL", Valid: false}
	page.Assets[3] = model.AssetRecord{DisplaySymbol: "DOGE", Price: 0.1, Valid: true}
	return page
}

func TestApplyCADPrices_LiveRate(t *testing.T) {
	crypto := cryptoPage()
	forex := model.PageData{Valid: true}
	forex.Assets[0] = model.AssetRecord{DisplaySymbol: "USD/CAD", Price: 1.40, Valid: true}

	ApplyCADPrices(&crypto, &forex, 1.30)

	if got := crypto.Assets[0].PriceCAD; got != 50000*1.40 {
		t.Errorf("BTC CAD price: expected %f, got %f", 50000*1.40, got)
	}
	if got := crypto.Assets[2].PriceCAD; got != 0 {
		t.Errorf("invalid asset should get zero CAD price, got %f", got)
	}
}

func TestApplyCADPrices_FallbackRate(t *testing.T) {
	tests := []struct {
		name  string
		forex model.PageData
	}{
		{"invalid page", model.PageData{}},
		{"invalid first asset", func() model.PageData {
			p := model.PageData{Valid: true}
			p.Assets[1] = model.AssetRecord{Price: 1.40, Valid: true}
			return p
		}()},
	}
	for _, tt := range tests {
		crypto := cryptoPage()
		ApplyCADPrices(&crypto, &tt.forex, 1.30)
		if got := crypto.Assets[1].PriceCAD; got != 3000*1.30 {
			t.Errorf("%s: expected fallback conversion %f, got %f", tt.name, 3000*1.30, got)
		}
	}
}
