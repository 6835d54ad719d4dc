package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/neos-go/neos-go/id"
	"github.com/neos-go/neos-go/types"
)

const pathMessages = "users/{userId}/messages"

// Messages implements the direct message endpoints of an authenticated
// user.
type Messages struct {
	api Requester
	me  id.User
}

func NewMessagesApi(r Requester, me id.User) *Messages {
	return &Messages{api: r, me: me}
}

// List returns messages of the current user filtered by query.
func (m *Messages) List(ctx context.Context, query types.MessagesQuery) ([]types.Message, error) {
	maxAmount := query.MaxAmount
	if maxAmount == 0 {
		maxAmount = types.DefaultMessagesMaxAmount
	}

	builders := []RequestBuilder{WithQuery("maxItems", strconv.Itoa(int(maxAmount)))}
	if query.UnreadOnly {
		builders = append(builders, WithQuery("unread", "true"))
	}
	if query.FromTime != nil {
		builders = append(builders, WithQuery("fromTime", query.FromTime.UTC().Format(time.RFC3339Nano)))
	}
	if query.WithUser != nil {
		builders = append(builders, WithQuery("user", query.WithUser.String()))
	}

	res, err := getJson[[]types.Message](ctx, m.api, pathWith(pathMessages, "{userId}", m.me.String()), builders...)
	if err != nil {
		return nil, err
	}
	return *res, nil
}

// Send delivers message to its recipient and returns the stored copy.
func (m *Messages) Send(ctx context.Context, message types.Message) (*types.Message, error) {
	return sendJson[types.Message](ctx, m.api, http.MethodPost,
		pathWith(pathMessages, "{userId}", message.RecipientId.String()),
		WithJSON(message),
	)
}

// SendText builds a text message from the current user and sends it.
func (m *Messages) SendText(ctx context.Context, recipient id.User, text string) (*types.Message, error) {
	message, err := types.NewTextMessage(m.me, recipient, text)
	if err != nil {
		return nil, err
	}
	return m.Send(ctx, message)
}
