package calculator

import (
	"log"

	"paperdash/internal/model"
)

// ApplyCADPrices computes the derived CAD price for every valid crypto
// asset. The forex page's first asset is the designated USD/CAD pair; its
// live price is used when valid, otherwise fallbackRate. Invalid crypto
// assets get a zero CAD price. Must run after all pages are fetched.
func ApplyCADPrices(crypto, forex *model.PageData, fallbackRate float64) {
	usdToCAD := fallbackRate
	if forex.Valid && forex.Assets[0].Valid {
		usdToCAD = forex.Assets[0].Price
		log.Printf("[INFO] using live USD/CAD rate: %.4f", usdToCAD)
	} else {
		log.Printf("[WARN] using fallback USD/CAD rate: %.4f", usdToCAD)
	}

	for i := range crypto.Assets {
		if crypto.Assets[i].Valid {
			crypto.Assets[i].PriceCAD = crypto.Assets[i].Price * usdToCAD
		} else {
			crypto.Assets[i].PriceCAD = 0
		}
	}
}
