package client

import (
	"context"
	"io"
	"net/http"

	"github.com/foomo/inertiacms/pkg/handler"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type httpTransport struct {
	client   *http.Client
	endpoint string
}

// NewHTTPTransport will create a new http transport for the given server and client.
// Caution: the provided server url is not validated!
func NewHTTPTransport(server string, client *http.Client) transport {
	return &httpTransport{
		endpoint: server,
		client:   client,
	}
}

func (ht *httpTransport) shutdown() {
	ht.client.CloseIdleConnections()
}

func (ht *httpTransport) call(ctx context.Context, route handler.Route, response interface{}) error {
	method := http.MethodPost
	if route == handler.RouteGetHistory {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, ht.endpoint+"/"+string(route), nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	resp, err := ht.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to call "+string(route))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("non 200 reply: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}
	reply := serverReply{}
	if err := json.Unmarshal(body, &reply); err != nil {
		return errors.Wrap(err, "failed to decode reply")
	}
	return json.Unmarshal(reply.Reply, response)
}
