package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/neos-go/neos-go/id"
)

const messageIdPrefix = "MSG-"

// Message is a direct message between two users.
//
// Content depends on MessageType: plain text for Text, and a JSON encoded
// SessionInfo or CreditTransaction for invites and transfers. The API
// sends those either as a JSON string or inline, so Content is kept raw.
type Message struct {
	Id             string          `json:"id"`
	OwnerId        id.User         `json:"ownerId"`
	SenderId       id.User         `json:"senderId"`
	RecipientId    id.User         `json:"recipientId"`
	MessageType    MessageType     `json:"messageType"`
	Content        json.RawMessage `json:"content"`
	SendTime       time.Time       `json:"sendTime"`
	LastUpdateTime time.Time       `json:"lastUpdateTime"`
	ReadTime       OptionalTime    `json:"readTime"`
}

// NewTextMessage builds a Text message from sender to recipient with a
// fresh MSG- id. The sender owns the outgoing copy.
func NewTextMessage(sender id.User, recipient id.User, text string) (Message, error) {
	content, err := json.Marshal(text)
	if err != nil {
		return Message{}, err
	}
	now := time.Now().UTC()
	return Message{
		Id:             messageIdPrefix + uuid.NewString(),
		OwnerId:        sender,
		SenderId:       sender,
		RecipientId:    recipient,
		MessageType:    MessageTypeText,
		Content:        content,
		SendTime:       now,
		LastUpdateTime: now,
	}, nil
}

// Text returns the content as a string. It works for every message type
// whose content is a JSON string.
func (m Message) Text() (string, bool) {
	var s string
	if err := json.Unmarshal(m.Content, &s); err != nil {
		return "", false
	}
	return s, true
}

// SessionInvite decodes the invited session of a SessionInvite message.
func (m Message) SessionInvite() (*SessionInfo, error) {
	if m.MessageType != MessageTypeSessionInvite {
		return nil, fmt.Errorf("message %s is a %s, not a session invite", m.Id, m.MessageType)
	}
	var session SessionInfo
	if err := decodeEmbedded(m.Content, &session); err != nil {
		return nil, fmt.Errorf("decoding session invite: %w", err)
	}
	return &session, nil
}

// CreditTransfer decodes the transaction of a CreditTransfer message.
func (m Message) CreditTransfer() (*CreditTransaction, error) {
	if m.MessageType != MessageTypeCreditTransfer {
		return nil, fmt.Errorf("message %s is a %s, not a credit transfer", m.Id, m.MessageType)
	}
	var tx CreditTransaction
	if err := decodeEmbedded(m.Content, &tx); err != nil {
		return nil, fmt.Errorf("decoding credit transfer: %w", err)
	}
	return &tx, nil
}

// decodeEmbedded accepts both an inline JSON object and a JSON string
// that itself holds the object.
func decodeEmbedded(raw json.RawMessage, dst any) error {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return json.Unmarshal([]byte(s), dst)
	}
	return json.Unmarshal(raw, dst)
}
