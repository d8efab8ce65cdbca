package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/blackjack-go/internal/api/response"
)

func newEventsCmd(c *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "events [owner]",
		Short: "Stream live events of a game",
		Long: `Connect to the game's SSE endpoint and stream events in real-time.

Events include:
  - connected: Stream established
  - game_state: Current state on connect
  - game_started: A new game was dealt
  - card_drawn: The player hit
  - game_finished: The game was settled
  - game_expired: The game timed out

The stream ends when the game finishes. Press Ctrl+C to disconnect.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := c.client.Stream(cmd.Context(), gamePath(args, "/events"))
			if err != nil {
				return err
			}
			defer func() { _ = body.Close() }()

			err = readEvents(body, c.out(cmd))
			if cmd.Context().Err() != nil {
				return nil
			}
			return err
		},
	}
}

// SSEEvent is one parsed server-sent event
type SSEEvent struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// errStreamDone stops reading once the game is over
var errStreamDone = errors.New("game over")

// readEvents prints events until the stream closes or the game ends
func readEvents(r io.Reader, out *Output) error {
	scanner := bufio.NewScanner(r)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, ":"):
			// Keepalive comment
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				if err := printEvent(out, currentEvent, strings.Join(dataLines, "\n")); errors.Is(err, errStreamDone) {
					return nil
				}
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream error: %w", err)
	}
	return nil
}

type gameEventData struct {
	Type string        `json:"type"`
	Game response.Game `json:"game"`
}

func printEvent(out *Output, event, data string) error {
	var payload gameEventData
	isGame := json.Unmarshal([]byte(data), &payload) == nil && payload.Game.ID != ""

	if out.JSON() {
		evt := SSEEvent{Time: time.Now(), Event: event}
		if json.Valid([]byte(data)) {
			evt.Data = json.RawMessage(data)
		}
		line, _ := json.Marshal(evt)
		fmt.Fprintln(out.w, string(line))
	} else {
		fmt.Fprintf(out.w, "[%s] %s\n", time.Now().Format("15:04:05"), event)
		if isGame {
			out.printGame(payload.Game)
		}
	}

	if event == "game_finished" || event == "game_expired" {
		return errStreamDone
	}
	return nil
}
