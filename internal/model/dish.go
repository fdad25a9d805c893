package model

// Dish is a menu item owned by one user.
type Dish struct {
	ID          string  `json:"id,omitempty"`
	OwnerID     string  `json:"ownerId,omitempty"`
	Name        string  `json:"name" validate:"required,max=120"`
	Description string  `json:"description,omitempty" validate:"max=500"`
	Category    string  `json:"category,omitempty" validate:"max=60"`
	Price       float64 `json:"price" validate:"gte=0"`
}
