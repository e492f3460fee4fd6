package client

import (
	"context"
	"net/http"

	"github.com/foomo/inertiacms/content"
	"github.com/foomo/inertiacms/pkg/handler"
	"github.com/foomo/inertiacms/pkg/utils"
	"github.com/foomo/inertiacms/responses"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

type (
	// Client of the admin api
	Client struct {
		t transport
	}
	serverReply struct {
		Reply jsoniter.RawMessage `json:"reply"`
	}
)

// NewHTTPClient returns a client for the admin api below the given url, i.e. http://localhost:8080/inertiacms
func NewHTTPClient(server string) (*Client, error) {
	return NewHTTPClientWithClient(server, http.DefaultClient)
}

func NewHTTPClientWithClient(server string, client *http.Client) (*Client, error) {
	if !utils.IsValidURL(server) {
		return nil, errors.Errorf("invalid server url %q", server)
	}
	return &Client{t: NewHTTPTransport(server, client)}, nil
}

// Update tells the server to update itself
func (c *Client) Update(ctx context.Context) (*responses.Update, error) {
	response := &responses.Update{}
	if err := c.t.call(ctx, handler.RouteUpdate, response); err != nil {
		return nil, err
	}
	return response, nil
}

// GetRepo returns the content of all sites
func (c *Client) GetRepo(ctx context.Context) (map[string]*content.Site, error) {
	response := map[string]*content.Site{}
	if err := c.t.call(ctx, handler.RouteGetRepo, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// GetHistory lists the persisted repo versions, newest first
func (c *Client) GetHistory(ctx context.Context) ([]string, error) {
	var response []string
	if err := c.t.call(ctx, handler.RouteGetHistory, &response); err != nil {
		return nil, err
	}
	return response, nil
}

func (c *Client) ShutDown() {
	c.t.shutdown()
}
