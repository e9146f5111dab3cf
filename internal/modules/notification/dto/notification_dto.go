package dto

import (
	"github.com/google/uuid"

	commonDto "talib.app/backend/pkg/dto"
)

type NotificationQuery struct {
	commonDto.PageQuery
	UnreadOnly bool `form:"unread_only"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// Event is the payload published to a recipient's channel and forwarded over the websocket.
type Event struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Kind      string     `json:"kind,omitempty"`
	ContentID *uuid.UUID `json:"content_id,omitempty"`
	Message   string     `json:"message"`
	CreatedAt string     `json:"created_at"`
}
