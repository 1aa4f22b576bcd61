package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/thelux31/hiddendevsappforwhatever/internal/app/dispatch"
)

var coinSides = [2]string{"Heads", "Tails"}

type UtilityService struct {
	latency LatencySource
	intn    func(n int) int
	now     func() time.Time
}

func NewUtilityService(latency LatencySource) *UtilityService {
	return &UtilityService{latency: latency, intn: rand.IntN, now: time.Now}
}

func (s *UtilityService) Commands() []dispatch.Descriptor {
	return []dispatch.Descriptor{
		{Name: "ping", Description: "Check the bot's latency!", Handler: s.ping},
		{Name: "coinflip", Description: "Flip a coin (Heads or Tails!)", Handler: s.coinflip},
	}
}

// ping replies first, then edits the reply with the measured round trip.
func (s *UtilityService) ping(ctx context.Context, ix *dispatch.Interaction) error {
	start := s.now()
	if err := ix.Response.SendPrimary(ctx, "Pinging...", false); err != nil {
		return err
	}
	response := s.now().Sub(start)
	websocket := s.latency.Latency()

	return ix.Response.EditPrimary(ctx, fmt.Sprintf(
		"Websocket latency: **%d ms**\nResponse latency: **%d ms**",
		websocket.Milliseconds(), response.Milliseconds(),
	))
}

func (s *UtilityService) coinflip(ctx context.Context, ix *dispatch.Interaction) error {
	side := coinSides[s.intn(len(coinSides))]
	return ix.Response.SendPrimary(ctx, fmt.Sprintf("The choice was... **%s**", side), false)
}
