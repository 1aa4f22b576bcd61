package discord

import (
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Client adapts a discordgo session to the ports the core and services use:
// dispatch.Transport, dispatch.CapabilitySource, service.Moderator and
// service.LatencySource.
type Client struct {
	s   *discordgo.Session
	log *slog.Logger
}

func NewClient(s *discordgo.Session, log *slog.Logger) *Client {
	return &Client{s: s, log: log}
}

func (c *Client) Session() *discordgo.Session { return c.s }

// Latency is the gateway heartbeat round trip.
func (c *Client) Latency() time.Duration { return c.s.HeartbeatLatency() }
