package store

import "time"

// User is a login account. Password holds a credential hash, never the
// plaintext.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
}

// Category groups products.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is a catalog entry belonging to one category.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Price       float64 `json:"price"`
	CategoryID  int64   `json:"category_id"`
	OnOffer     bool    `json:"on_offer"`
}

// ListStatus is the lifecycle state of a shopping list.
type ListStatus string

const (
	StatusActive    ListStatus = "active"
	StatusCompleted ListStatus = "completed"
)

// ShoppingList is a user's list of products. A user has at most one list
// with StatusActive: the cart.
type ShoppingList struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	CreationDate time.Time  `json:"creation_date"`
	Status       ListStatus `json:"status"`
}

// ShoppingListItem is one product line of a shopping list, keyed by
// (ListID, ProductID).
type ShoppingListItem struct {
	ListID    int64 `json:"list_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// WishlistItem marks a product as wished for by a user, keyed by
// (UserID, ProductID).
type WishlistItem struct {
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
}

// LineItem is a shopping list item joined with its product's display fields.
type LineItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}
