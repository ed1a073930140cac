package blockchain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Soar-Robotics/SoarchainPresale/internal/blockchain/types"
	"github.com/Soar-Robotics/SoarchainPresale/internal/utils"
	"github.com/gorilla/websocket"
)

var ErrClosed = errors.New("ledger connection closed")

// RPCError is an error reply from the node ("status": "error").
type RPCError struct {
	Command string
	Code    string
	Message string
}

func (e *RPCError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("xrpl %s: %s: %s", e.Command, e.Code, e.Message)
	}
	return fmt.Sprintf("xrpl %s: %s", e.Command, e.Code)
}

type Options struct {
	// RequestTimeout bounds a single command round trip.
	RequestTimeout time.Duration
	// ConfirmTimeout bounds the wait for validation after submit.
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	MaxFeeDrops    int64
	// LedgerOffset is added to the current ledger index to get LastLedgerSequence.
	LedgerOffset uint32

	// Signer signs outgoing payments. When nil and Secret is set, a
	// SeedSigner is built from Secret and the seed never leaves the process.
	Signer Signer
	Secret string
	// NodeSign sends Secret to the node's sign command instead. Only for
	// standalone or test nodes under your control.
	NodeSign bool

	Logger *utils.Logger
}

func (o *Options) setDefaults() {
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 20 * time.Second
	}
	if o.ConfirmTimeout <= 0 {
		o.ConfirmTimeout = 2 * time.Minute
	}
	if o.PollInterval <= 0 {
		o.PollInterval = time.Second
	}
	if o.MaxFeeDrops <= 0 {
		o.MaxFeeDrops = 2000
	}
	if o.LedgerOffset == 0 {
		o.LedgerOffset = 20
	}
	if o.Logger == nil {
		o.Logger = utils.NopLogger()
	}
}

// Client talks to a rippled node over its websocket JSON API. Requests may be
// issued from several goroutines; replies are matched by id.
type Client struct {
	URL  string
	conn *websocket.Conn
	opts Options
	log  *utils.Logger

	signer Signer

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan types.Response

	done     chan struct{}
	doneOnce sync.Once
	doneErr  error
}

func Dial(ctx context.Context, url string, opts Options) (*Client, error) {
	opts.setDefaults()
	c := &Client{
		URL:     url,
		opts:    opts,
		log:     opts.Logger.With("component", "ledger", "url", url),
		pending: make(map[uint64]chan types.Response),
		done:    make(chan struct{}),
	}
	c.signer = opts.Signer
	if c.signer == nil && opts.Secret != "" {
		if opts.NodeSign {
			c.log.Warn("Ledger node signing enabled; the wallet seed is sent to the node")
			c.signer = &nodeSigner{client: c, secret: opts.Secret}
		} else {
			signer, err := NewSeedSigner(opts.Secret)
			if err != nil {
				return nil, err
			}
			c.signer = signer
		}
	}

	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) Connect(ctx context.Context) error {
	c.log.Debug("Connecting to ledger node")
	dialCtx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, c.URL, nil)
	if err != nil {
		c.log.Warn("Failed to connect to ledger node", "error", err)
		return fmt.Errorf("dial %s: %w", c.URL, err)
	}
	c.log.Debug("Connected to ledger node")
	c.conn = conn
	return nil
}

// Close releases the connection. Pending requests fail with ErrClosed.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	err := c.conn.Close()
	c.shutdown(ErrClosed)
	return err
}

func (c *Client) shutdown(err error) {
	c.doneOnce.Do(func() {
		c.doneErr = err
		close(c.done)
	})
}

func (c *Client) readLoop() {
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.log.Warn("Ledger read failed", "error", err)
			}
			c.shutdown(fmt.Errorf("%w: %v", ErrClosed, err))
			return
		}

		var resp types.Response
		if err := json.Unmarshal(message, &resp); err != nil {
			c.log.Warn("Error parsing ledger message", "error", err)
			continue
		}
		// Stream messages (ledgerClosed, transaction, ...) carry no id.
		if resp.Type != "response" {
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

// Request sends one command and decodes its result into out (may be nil).
func (c *Client) Request(ctx context.Context, command string, params map[string]any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	ch := make(chan types.Response, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	msg := make(map[string]any, len(params)+2)
	for k, v := range params {
		msg[k] = v
	}
	msg["id"] = id
	msg["command"] = command

	c.writeMu.Lock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
	}
	err := c.conn.WriteJSON(msg)
	c.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("xrpl %s: write: %w", command, err)
	}

	select {
	case resp := <-ch:
		if resp.Status != "success" {
			return &RPCError{Command: command, Code: resp.Error, Message: resp.ErrorMessage}
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("xrpl %s: decode result: %w", command, err)
		}
		return nil
	case <-c.done:
		return fmt.Errorf("xrpl %s: %w", command, c.doneErr)
	case <-ctx.Done():
		return fmt.Errorf("xrpl %s: %w", command, ctx.Err())
	}
}
