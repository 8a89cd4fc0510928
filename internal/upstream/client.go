// Package upstream is an EntityStore backed by the organisation's asset REST
// API. Rows coming back are read through the same alias table as user input,
// so the API may spell its columns however it likes.
package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/normalize"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/store"
)

// DefaultBaseURL is where the asset API lives on the office network.
const DefaultBaseURL = "http://goatedcodoer:8080/api"

var collections = map[model.Kind]string{
	model.KindUser:           "users",
	model.KindItem:           "items",
	model.KindItemType:       "item-types",
	model.KindClassification: "item-classifications",
	model.KindDepartment:     "departments",
	model.KindAsset:          "assets",
}

// Collection returns the API path segment of kind.
func Collection(kind model.Kind) string {
	return collections[kind]
}

// StatusError is a non-success response from the API.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned %d", e.Status)
	}
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
}

var tooLong = regexp.MustCompile(`(?i)data too long|truncated|too long`)

// TooLarge reports whether the API refused the payload for its size, which
// in practice means an embedded image.
func (e *StatusError) TooLarge() bool {
	return e.Status == http.StatusRequestEntityTooLarge || tooLong.MatchString(e.Message)
}

var duplicate = regexp.MustCompile(`(?i)duplicate`)

// Client talks to the asset API.
type Client struct {
	url        string
	httpClient *http.Client
	norm       *normalize.Normalizer
}

var _ store.EntityStore = (*Client)(nil)

// New returns a client for the API at baseURL. Rows are read through n.
func New(baseURL string, n *normalize.Normalizer) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		url:        strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		norm:       n,
	}
}

// WithHTTPClient returns a copy of the client using hc.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	cp := *c
	cp.httpClient = hc
	return &cp
}

func (c *Client) path(kind model.Kind, id int64) (string, error) {
	coll, ok := collections[kind]
	if !ok {
		return "", fmt.Errorf("no collection for kind %q", kind)
	}
	if id > 0 {
		return c.url + "/" + coll + "/" + strconv.FormatInt(id, 10), nil
	}
	return c.url + "/" + coll, nil
}

// do sends body as JSON and decodes the response into result. An empty
// response body leaves result untouched.
func (c *Client) do(ctx context.Context, method, url string, body any, result any) error {
	var rd io.Reader
	if body != nil {
		j, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, url, err)
		}
		rd = bytes.NewReader(j)
	}

	r, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return err
	}
	r.Header.Set("Accept", "application/json")
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(r)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("reading %s %s: %w", method, url, err)
	}

	if res.StatusCode >= 300 {
		return statusError(res.StatusCode, resBody)
	}
	if result == nil || len(bytes.TrimSpace(resBody)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(resBody))
	dec.UseNumber()
	if err := dec.Decode(result); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, url, err)
	}
	return nil
}

// statusError maps a failed response onto the store's sentinels where one
// fits.
func statusError(status int, body []byte) error {
	se := &StatusError{Status: status, Message: message(body)}
	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %w", store.ErrNotFound, se)
	case status == http.StatusConflict || duplicate.MatchString(se.Message):
		return fmt.Errorf("%w: %w", store.ErrDuplicate, se)
	}
	return se
}

// message pulls a human readable message out of an error body, which may be
// JSON with "message" or "error", or plain text.
func message(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}
	var m struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &m) == nil {
		if m.Message != "" {
			return m.Message
		}
		if m.Error != "" {
			return m.Error
		}
	}
	return string(body)
}

func upstreamErr(op string, kind model.Kind, name string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %w", store.ErrTimeout, err)
	}
	return &store.UpstreamError{Op: op, Kind: kind, Name: name, Err: err}
}
