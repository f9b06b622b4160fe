package core

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vovakirdan/wirefeed/internal/store"
)

const clientBuffer = 64

// Client is a session-scoped observer that buffers messages for the channels it joined.
type Client struct {
	ID       string
	Name     string
	Messages chan store.Message

	mu       sync.RWMutex
	channels map[int64]struct{}
}

// NewClient constructs a client with an initialized message buffer.
func NewClient(name string) *Client {
	id := uuid.NewString()
	if name == "" {
		name = id
	}
	return &Client{
		ID:       id,
		Name:     name,
		Messages: make(chan store.Message, clientBuffer),
		channels: make(map[int64]struct{}),
	}
}

// Join starts receiving messages of a channel. Returns true if newly joined.
func (c *Client) Join(channelID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.channels[channelID]; exists {
		return false
	}
	c.channels[channelID] = struct{}{}
	return true
}

// Leave stops receiving messages of a channel. Returns true if removed.
func (c *Client) Leave(channelID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.channels[channelID]; !exists {
		return false
	}
	delete(c.channels, channelID)
	return true
}

// LeaveAll stops receiving messages of every channel.
func (c *Client) LeaveAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.channels)
}

// InChannel reports whether the client joined the channel.
func (c *Client) InChannel(channelID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.channels[channelID]
	return ok
}

// Notify buffers msg if the client joined its channel.
// It never blocks; a full buffer drops the message and returns ErrSlowConsumer.
func (c *Client) Notify(_ context.Context, msg store.Message) error {
	if !c.InChannel(msg.ChannelID) {
		return nil
	}

	select {
	case c.Messages <- msg:
		return nil
	default:
		return ErrSlowConsumer
	}
}
