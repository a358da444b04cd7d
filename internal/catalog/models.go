package catalog

import "time"

type Product struct {
	ID         string    `json:"id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	Stock      int       `json:"stock"`
	PriceCents int       `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// View is the storefront shape; price is in major units.
type View struct {
	ID      string  `json:"id"`
	SKU     string  `json:"sku"`
	Name    string  `json:"name"`
	Stock   int     `json:"stock"`
	Price   float64 `json:"price"`
	InStock bool    `json:"inStock"`
}

func (p Product) View() View {
	return View{
		ID:      p.ID,
		SKU:     p.SKU,
		Name:    p.Name,
		Stock:   p.Stock,
		Price:   float64(p.PriceCents) / 100,
		InStock: p.Stock > 0,
	}
}
