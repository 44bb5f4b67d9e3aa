package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"efis-pfd/internal/efis"
	"efis-pfd/internal/monitor"
)

// Client subscribes to an instrument feed and applies every update to a
// display. While the stream is down the overall EFIS is flagged
// unserviceable.
type Client struct {
	addr           string
	target         efis.Renderer
	log            logrus.FieldLogger
	reconnectDelay time.Duration
	dialOpts       []grpc.DialOption

	mu   sync.Mutex
	conn *grpc.ClientConn
	live bool
}

// NewClient creates a feed client for addr. Extra dial options are appended
// to the insecure transport credentials.
func NewClient(addr string, target efis.Renderer, log logrus.FieldLogger, reconnectDelay time.Duration, opts ...grpc.DialOption) *Client {
	if reconnectDelay <= 0 {
		reconnectDelay = time.Second
	}
	return &Client{
		addr:           addr,
		target:         target,
		log:            log.WithField("addr", addr),
		reconnectDelay: reconnectDelay,
		dialOpts: append([]grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		}, opts...),
	}
}

// Connect prepares the client connection. The transport itself connects
// lazily on the first stream.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	conn, err := grpc.NewClient(c.addr, c.dialOpts...)
	if err != nil {
		return fmt.Errorf("feed client %s: %w", c.addr, err)
	}
	c.conn = conn
	return nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Live reports whether updates are currently arriving.
func (c *Client) Live() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

func (c *Client) setLive(live bool) {
	c.mu.Lock()
	changed := c.live != live
	c.live = live
	c.mu.Unlock()

	if !changed {
		return
	}
	if live {
		monitor.FeedConnected.Set(1)
		c.target.SetServiceability(efis.InstrumentEFIS, efis.Serviceable)
	} else {
		monitor.FeedConnected.Set(0)
		c.target.SetServiceability(efis.InstrumentEFIS, efis.Unserviceable)
	}
}

// Run streams updates until ctx is cancelled, reconnecting after
// reconnectDelay whenever the stream ends.
func (c *Client) Run(ctx context.Context) error {
	if err := c.Connect(); err != nil {
		return err
	}

	// Nothing has arrived yet.
	c.target.SetServiceability(efis.InstrumentEFIS, efis.Unserviceable)

	for {
		err := c.stream(ctx)
		c.setLive(false)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			c.log.WithError(err).Warn("Feed stream error")
		} else {
			c.log.Info("Feed stream ended")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.reconnectDelay):
		}
	}
}

func (c *Client) stream(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errors.New("feed client closed")
	}

	stream, err := conn.NewStream(ctx, &serviceDesc.Streams[0], subscribeMethod)
	if err != nil {
		return err
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}

	for {
		u := new(structpb.Struct)
		err := stream.RecvMsg(u)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		c.setLive(true)
		typ, err := Apply(c.target, u)
		if err != nil {
			monitor.FeedErrors.Inc()
			c.log.WithError(err).Warn("Dropping malformed update")
			continue
		}
		monitor.FeedUpdates.WithLabelValues(typ).Inc()
	}
}
