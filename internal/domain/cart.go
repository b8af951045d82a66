package domain

// LineItem is one product-and-quantity entry in the cart.
type LineItem struct {
	FoodID   string  `json:"_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
	Quantity int     `json:"quantity"`
}

// NewLineItem builds a single-quantity line item for food.
func NewLineItem(f Food) LineItem {
	return LineItem{
		FoodID:   f.ID,
		Name:     f.Name,
		Price:    f.Price,
		Image:    f.Image,
		Quantity: 1,
	}
}
