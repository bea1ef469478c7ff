package domain

import "time"

// ActionType identifies the kind of structured action attached to a reply
type ActionType string

const (
	ActionSearch             ActionType = "search"
	ActionAddToCart          ActionType = "add_to_cart"
	ActionAddToWishlist      ActionType = "add_to_wishlist"
	ActionRemoveFromCart     ActionType = "remove_from_cart"
	ActionRemoveFromWishlist ActionType = "remove_from_wishlist"
)

// ChatAction is an instruction for the client to apply to its cart, wishlist
// or search state. Query and Results are set for search actions, Product for
// the cart and wishlist kinds.
type ChatAction struct {
	Type    ActionType `json:"type"`
	Query   string     `json:"query,omitempty"`
	Results []Product  `json:"results,omitempty"`
	Product *Product   `json:"product,omitempty"`
}

// CartItem is one cart line
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// WishlistItem is one saved product
type WishlistItem struct {
	Product Product   `json:"product"`
	AddedAt time.Time `json:"addedAt,omitempty"`
}

// ShoppingState is the client-owned cart and wishlist snapshot for one turn
type ShoppingState struct {
	Cart     []CartItem     `json:"cart,omitempty"`
	Wishlist []WishlistItem `json:"wishlist,omitempty"`
}

// CartTotals returns the summed quantity and price of the cart
func (s ShoppingState) CartTotals() (int, float64) {
	var quantity int
	var total float64
	for _, item := range s.Cart {
		quantity += item.Quantity
		total += item.Product.Price * float64(item.Quantity)
	}
	return quantity, total
}

// Chat types and message roles
const (
	ChatTypeText  = "TEXT"
	ChatTypeAudio = "AUDIO"
	ChatTypeMixed = "MIXED"

	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Model and system labels reported with each reply
const (
	DefaultRemoteModel  = "gpt-4o"
	DefaultRemoteSystem = "GENERAL_LLM"
	LocalModel          = "local-fallback"
	LocalSystem         = "LOCAL_RULES"
)

// ChatMessage is one transcript entry forwarded to the remote assistant
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a single user turn
type ChatRequest struct {
	Message   string        `json:"message" binding:"required"`
	SessionID string        `json:"sessionId,omitempty"`
	ChatType  string        `json:"chatType,omitempty"`
	Messages  []ChatMessage `json:"messages,omitempty"`
	ShoppingState
}

// ChatResponse is the assistant reply for one turn
type ChatResponse struct {
	Content        string      `json:"content"`
	Action         *ChatAction `json:"action,omitempty"`
	SessionID      string      `json:"sessionId"`
	ChatType       string      `json:"chatType"`
	ModelUsed      string      `json:"modelUsed"`
	SystemUsed     string      `json:"systemUsed"`
	ResponseTimeMs int64       `json:"responseTimeMs"`
}

// AssistantRequest is the body sent to the remote chat completion endpoint
type AssistantRequest struct {
	Message   string        `json:"message"`
	SessionID string        `json:"sessionId,omitempty"`
	ChatType  string        `json:"chatType,omitempty"`
	Messages  []ChatMessage `json:"messages"`
}

// AssistantReply is a reply produced by either the remote assistant or the
// local classifier
type AssistantReply struct {
	Content    string      `json:"content"`
	Action     *ChatAction `json:"action,omitempty"`
	ModelUsed  string      `json:"modelUsed,omitempty"`
	SystemUsed string      `json:"systemUsed,omitempty"`
}
