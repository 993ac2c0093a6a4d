package movesvc

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"github.com/matzehuels/thoughttree/pkg/cache"
	"github.com/matzehuels/thoughttree/pkg/errors"
	"github.com/matzehuels/thoughttree/pkg/integrations"
	"github.com/matzehuels/thoughttree/pkg/tree"
)

// Request modes.
const (
	ModeCoT = "cot"
	ModeToT = "tot"
)

// DefaultTTL is how long responses stay cached.
const DefaultTTL = 24 * time.Hour

const movePath = "/api/v1/move"

// Board is a 3x3 board in row-major order. Cells are "X", "O" or "" for
// empty; empty cells encode as JSON null.
type Board [9]string

// MarshalJSON encodes empty cells as null.
func (b Board) MarshalJSON() ([]byte, error) {
	cells := make([]*string, len(b))
	for i := range b {
		if b[i] != "" {
			cells[i] = &b[i]
		}
	}
	return json.Marshal(cells)
}

// ParseBoard reads a board written as nine cells, e.g. "X.O/.X./..O".
// '.', '-' and '_' mark empty cells; '/', '|', ',' and spaces are ignored.
func ParseBoard(s string) (Board, error) {
	var b Board
	i := 0
	for _, r := range s {
		switch r {
		case '/', '|', ',', ' ':
			continue
		}
		if i == len(b) {
			return b, errors.New(errors.ErrCodeInvalidInput, "board has more than 9 cells: %q", s)
		}
		switch r {
		case 'X', 'x':
			b[i] = "X"
		case 'O', 'o':
			b[i] = "O"
		case '.', '-', '_':
		default:
			return b, errors.New(errors.ErrCodeInvalidInput, "invalid board cell %q", r)
		}
		i++
	}
	if i != len(b) {
		return b, errors.New(errors.ErrCodeInvalidInput, "board has %d cells, want 9", i)
	}
	return b, nil
}

// String renders the board in the form ParseBoard reads.
func (b Board) String() string {
	var sb strings.Builder
	for i, c := range b {
		if i > 0 && i%3 == 0 {
			sb.WriteByte('/')
		}
		if c == "" {
			sb.WriteByte('.')
		} else {
			sb.WriteString(c)
		}
	}
	return sb.String()
}

// Request asks the service for a move.
type Request struct {
	Mode   string `json:"mode"`
	Board  Board  `json:"board"`
	Player string `json:"player"`
	Beam   *int   `json:"beam,omitempty"`
	Depth  *int   `json:"depth,omitempty"`
}

// Validate checks the request before it is sent.
func (r Request) Validate() error {
	if r.Mode != ModeCoT && r.Mode != ModeToT {
		return errors.New(errors.ErrCodeInvalidInput, "mode must be cot or tot, got %q", r.Mode)
	}
	if r.Player != "X" && r.Player != "O" {
		return errors.New(errors.ErrCodeInvalidInput, "player must be X or O, got %q", r.Player)
	}
	for i, c := range r.Board {
		if c != "" && c != "X" && c != "O" {
			return errors.New(errors.ErrCodeInvalidInput, "board cell %d is %q", i, c)
		}
	}
	if r.Beam != nil && *r.Beam < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "beam must be positive")
	}
	if r.Depth != nil && *r.Depth < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "depth must be positive")
	}
	return nil
}

// Client talks to one move-selection service.
type Client struct {
	base    *integrations.Client
	baseURL string
}

// NewClient creates a client for the service at baseURL. Responses are
// cached in c for ttl; a nil cache disables caching.
func NewClient(c cache.Cache, baseURL string, ttl time.Duration) *Client {
	return &Client{
		base:    integrations.NewClient(c, "movesvc:", ttl, nil),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Base returns the shared transport, e.g. to set a timeout.
func (c *Client) Base() *integrations.Client { return c.base }

// Move requests a move. ToT responses always carry a tree; a ToT response
// without one is an error.
func (c *Client) Move(ctx context.Context, req Request, refresh bool) (*tree.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	key, err := cache.HashJSON(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash request")
	}

	var raw json.RawMessage
	err = c.base.Cached(ctx, key, refresh, &raw, func() error {
		return c.base.PostJSON(ctx, c.baseURL+movePath, req, &raw)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctxErr, "move request")
		}
		if stderrors.Is(err, integrations.ErrNotFound) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "move endpoint %s", c.baseURL+movePath)
		}
		return nil, errors.Wrap(errors.ErrCodeUpstream, err, "move request")
	}

	if req.Mode == ModeToT {
		return tree.UnmarshalResponse(raw)
	}
	var resp tree.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUpstream, err, "decode move response")
	}
	return &resp, nil
}
