package assistant

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/shopassist/backend/internal/domain"
)

var errEmptyContent = errors.New("reply has no content")

// MapToAssistantReply converts the wire reply into the domain model. Actions
// with an unknown type or an unreadable payload are dropped; the text reply
// is kept.
func MapToAssistantReply(wire *domain.RemoteReply) (*domain.AssistantReply, error) {
	if wire == nil || strings.TrimSpace(wire.Content) == "" {
		return nil, errEmptyContent
	}

	reply := &domain.AssistantReply{
		Content:    wire.Content,
		ModelUsed:  wire.ModelUsed,
		SystemUsed: wire.SystemUsed,
	}

	if wire.Action != nil {
		action, err := mapAction(wire.Action)
		if err != nil {
			log.Warn().Err(err).Str("component", "assistant").Str("action", string(wire.Action.Type)).Msg("dropping unreadable action")
		} else {
			reply.Action = action
		}
	}

	return reply, nil
}

// mapAction decodes the type-specific payload of a wire action
func mapAction(wire *domain.RemoteAction) (*domain.ChatAction, error) {
	switch wire.Type {
	case domain.ActionSearch:
		var data domain.RemoteSearchData
		if err := decodeData(wire.Data, &data); err != nil {
			return nil, err
		}
		return &domain.ChatAction{Type: wire.Type, Query: data.Query, Results: data.Results}, nil

	case domain.ActionAddToCart, domain.ActionAddToWishlist,
		domain.ActionRemoveFromCart, domain.ActionRemoveFromWishlist:
		product, err := decodeProduct(wire.Data)
		if err != nil {
			return nil, err
		}
		return &domain.ChatAction{Type: wire.Type, Product: product}, nil

	default:
		return nil, errors.New("unknown action type")
	}
}

// decodeProduct accepts either {"product": {...}} or a bare product object
func decodeProduct(raw json.RawMessage) (*domain.Product, error) {
	var wrapped domain.RemoteProductData
	if err := decodeData(raw, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Product != nil {
		return wrapped.Product, nil
	}

	var bare domain.Product
	if err := decodeData(raw, &bare); err != nil {
		return nil, err
	}
	if bare.ID == "" && bare.Name == "" {
		return nil, errors.New("action has no product")
	}
	return &bare, nil
}

func decodeData(raw json.RawMessage, dest any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
