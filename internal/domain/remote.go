package domain

import "encoding/json"

// RemoteAction is an action as sent by the remote assistant: a type tag plus
// a type-specific payload
type RemoteAction struct {
	Type ActionType      `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// RemoteSearchData is the payload of a remote "search" action
type RemoteSearchData struct {
	Query   string    `json:"query"`
	Results []Product `json:"results,omitempty"`
}

// RemoteProductData is the payload of the cart and wishlist actions
type RemoteProductData struct {
	Product *Product `json:"product"`
}

// RemoteReply is the response body of the chat completion endpoint
type RemoteReply struct {
	Content    string        `json:"content"`
	Action     *RemoteAction `json:"action,omitempty"`
	ModelUsed  string        `json:"modelUsed,omitempty"`
	SystemUsed string        `json:"systemUsed,omitempty"`
}

// APICategory is the category embedded in an APIProduct
type APICategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// APIProduct is a product as served by the product REST backend.
// Prices arrive as decimal strings or numbers.
type APIProduct struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description"`
	Price       json.Number  `json:"price"`
	CategoryID  *string      `json:"category_id"`
	Category    *APICategory `json:"category"`
	Brand       *string      `json:"brand"`
	Images      []string     `json:"images"`
	Tags        []string     `json:"tags"`
	Stock       *int         `json:"stock"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
}

// APIProductPage is one page of the product REST backend listing
type APIProductPage struct {
	Products   []APIProduct `json:"products"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}
