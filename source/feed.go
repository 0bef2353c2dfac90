package source

import (
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/ziutek/telnet"
)

// FeedClient follows a live telemetry feed over telnet.
type FeedClient struct {
	host      string
	port      int
	name      string
	conn      *telnet.Conn
	connected bool
	shutdown  chan struct{}
	lineChan  chan string
	reconnect chan struct{}
	stopOnce  sync.Once
}

// NewFeedClient creates a telnet feed client. Lines arrive on Lines() once
// Connect succeeds.
func NewFeedClient(host string, port int, name string) *FeedClient {
	return &FeedClient{
		host:      host,
		port:      port,
		name:      name,
		shutdown:  make(chan struct{}),
		lineChan:  make(chan string, 1000),
		reconnect: make(chan struct{}, 1),
	}
}

// Connect establishes the initial feed connection and starts the supervision
// loop. The first dial runs synchronously so failures are reported to the
// caller; subsequent disconnects are handled by the background reconnect loop.
func (c *FeedClient) Connect() error {
	if err := c.establishConnection(); err != nil {
		return err
	}
	go c.connectionSupervisor()
	return nil
}

// establishConnection dials the remote feed and spins up the read goroutine.
// It is used for the initial connection and each subsequent reconnect.
func (c *FeedClient) establishConnection() error {
	addr := net.JoinHostPort(c.host, fmt.Sprintf("%d", c.port))
	log.Printf("%s: connecting to %s...", c.name, addr)

	conn, err := telnet.DialTimeout("tcp", addr, 30*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.name, err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("%s: connection established", c.name)

	go c.readLoop()
	return nil
}

// connectionSupervisor waits for disconnect notifications and orchestrates
// the exponential backoff / reconnect attempts while honoring shutdown.
func (c *FeedClient) connectionSupervisor() {
	const (
		initialDelay = 5 * time.Second
		maxDelay     = 60 * time.Second
	)

	for {
		select {
		case <-c.shutdown:
			return
		case <-c.reconnect:
			if c.isShutdown() {
				return
			}
			delay := initialDelay
			for {
				if c.isShutdown() {
					return
				}
				log.Printf("%s: attempting reconnect...", c.name)
				if err := c.establishConnection(); err != nil {
					log.Printf("%s: reconnect failed: %v (retry in %s)", c.name, err, delay)
					timer := time.NewTimer(delay)
					select {
					case <-timer.C:
					case <-c.shutdown:
						timer.Stop()
						return
					}
					delay *= 2
					if delay > maxDelay {
						delay = maxDelay
					}
					continue
				}
				break
			}
		}
	}
}

// readLoop reads lines from the feed until the connection drops.
func (c *FeedClient) readLoop() {
	defer func() {
		c.connected = false
		if c.conn != nil {
			c.conn.Close()
		}
	}()

	for {
		select {
		case <-c.shutdown:
			log.Printf("%s: shutting down", c.name)
			return
		default:
			c.conn.SetReadDeadline(time.Now().Add(5 * time.Minute))

			line, err := c.conn.ReadString('\n')
			if err != nil {
				if c.isShutdown() {
					return
				}
				log.Printf("%s: read error: %v", c.name, err)
				c.requestReconnect(err)
				return
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			select {
			case c.lineChan <- line:
			default:
				log.Printf("%s: line channel full, dropping line", c.name)
			}
		}
	}
}

// Lines returns the channel delivering raw feed lines.
func (c *FeedClient) Lines() <-chan string {
	return c.lineChan
}

// IsConnected returns whether the client currently holds a connection.
func (c *FeedClient) IsConnected() bool {
	return c.connected
}

// Stop closes the feed connection and ends supervision.
func (c *FeedClient) Stop() {
	log.Printf("Stopping %s client...", c.name)
	c.stopOnce.Do(func() {
		close(c.shutdown)
	})
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *FeedClient) isShutdown() bool {
	select {
	case <-c.shutdown:
		return true
	default:
		return false
	}
}

func (c *FeedClient) requestReconnect(reason error) {
	if c.isShutdown() {
		return
	}
	if reason != nil {
		log.Printf("%s: scheduling reconnect after error: %v", c.name, reason)
	}
	select {
	case c.reconnect <- struct{}{}:
	default:
	}
}
