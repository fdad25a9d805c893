package model

// Sale records how many portions of a dish were sold on a date.
type Sale struct {
	ID       string `json:"id"`
	OwnerID  string `json:"ownerId"`
	DishID   string `json:"dishId"`
	Date     string `json:"date"`
	Quantity int    `json:"quantity"`
}

// SaleView is a sale joined with the name of its dish.
type SaleView struct {
	Sale
	DishName string `json:"dishName"`
}

// SaleForm holds the editable fields of a sale.
type SaleForm struct {
	ID       string `json:"id,omitempty"`
	DishID   string `json:"dishId" validate:"required"`
	Date     string `json:"date" validate:"required,isodate"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}
