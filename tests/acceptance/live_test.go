package acceptance

import (
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bitminesocial/mining-service/internal/dto"
)

func (s *Suite) TestLiveFeed_StreamsFrames() {
	wsURL := strings.Replace(s.BaseURL, "http://", "ws://", 1) + "/api/v1/live"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	s.Require().NoError(err, "Failed to open websocket")
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// The first frame arrives immediately with the starting balances
	var first dto.LiveUpdate
	s.Require().NoError(conn.ReadJSON(&first))
	s.Equal("stats", first.Type)
	s.Equal(18.0, first.BalanceUsd)
	s.Equal(0.00025, first.BalanceBtc)

	// Later frames only grow the balances
	prev := first
	for i := 0; i < 3; i++ {
		var frame dto.LiveUpdate
		s.Require().NoError(conn.ReadJSON(&frame))
		if frame.Type != "stats" {
			continue
		}
		s.GreaterOrEqual(frame.BalanceUsd, prev.BalanceUsd)
		s.GreaterOrEqual(frame.BalanceBtc, prev.BalanceBtc)
		s.LessOrEqual(frame.BalanceUsd, 458.0)
		s.LessOrEqual(frame.BalanceBtc, 0.0027)
		prev = frame
	}
}
