package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stellarsoil/stellarsoil-api/models"
)

// Client talks to the order API on behalf of an authenticated user.
type Client struct {
	http *resty.Client

	// OnSessionInvalid is invoked once per 401 response, in place of the
	// global "clear credentials and redirect" side effect a browser client
	// would perform. Optional.
	OnSessionInvalid func()
}

func New(baseURL, token string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(token).
			SetTimeout(15 * time.Second),
	}
}

// Snapshot is one server-authoritative view of an order, replaced wholesale
// on every poll tick.
type Snapshot struct {
	Order models.Order `json:"order"`
	Step  int          `json:"step"`
}

// GetOrder fetches the current order snapshot.
func (c *Client) GetOrder(ctx context.Context, orderId uint) (Snapshot, error) {
	var snapshot Snapshot
	resp, err := c.http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/orders/%d", orderId))
	if err != nil {
		return snapshot, &OrderError{Message: "could not load order details"}
	}
	if resp.IsError() {
		return snapshot, c.mapError(resp)
	}
	if err := json.Unmarshal(resp.Body(), &snapshot); err != nil {
		return snapshot, &OrderError{Message: "invalid order response"}
	}
	return snapshot, nil
}

// mapError converts a non-2xx API response into the typed error taxonomy.
func (c *Client) mapError(resp *resty.Response) error {
	msg := serverMessage(resp)
	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		if c.OnSessionInvalid != nil {
			c.OnSessionInvalid()
		}
		return ErrAuthenticationRequired
	case http.StatusForbidden:
		return ErrAuthorization
	default:
		return &OrderError{StatusCode: resp.StatusCode(), Message: msg}
	}
}

func serverMessage(resp *resty.Response) string {
	var body struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		if body.Msg != "" {
			return body.Msg
		}
		return body.Message
	}
	return ""
}

// serverErrorCode extracts the machine-readable error code, if the server
// sent one alongside the message.
func serverErrorCode(resp *resty.Response) string {
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		return body.Code
	}
	return ""
}
