package models

type Cart struct {
	UserID string     `json:"user_id"`
	Items  []CartItem `json:"items"`
}

type CartItem struct {
	ProductID       string            `json:"product_id"`
	Name            string            `json:"name"`
	Price           float64           `json:"price"`
	Quantity        int               `json:"quantity"`
	ImageURL        string            `json:"image_url,omitempty"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"` // nom d'option → valeur choisie
}

// SameLine : deux items ne fusionnent que si produit ET options identiques
func (ci CartItem) SameLine(other CartItem) bool {
	if ci.ProductID != other.ProductID {
		return false
	}
	if len(ci.SelectedOptions) != len(other.SelectedOptions) {
		return false
	}
	for k, v := range ci.SelectedOptions {
		if other.SelectedOptions[k] != v {
			return false
		}
	}
	return true
}
