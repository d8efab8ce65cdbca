package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/blackjack-go/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// JSON reports whether output is machine-readable
func (o *Output) JSON() bool {
	return o.format == "json"
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.JSON() {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.JSON() {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Player:
		o.printPlayer(v)
	case response.AuthResponse:
		o.printAuth(v)
	case response.Game:
		o.printGame(v)
	case response.Action:
		o.printAction(v)
	case response.History:
		o.printHistory(v)
	case response.Leaderboard:
		o.printLeaderboard(v)
	case response.Channels:
		o.printChannels(v)
	case response.ChannelAllowed:
		o.printChannelAllowed(v)
	case response.Health:
		o.printHealth(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printPlayer(p response.Player) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.DisplayName, p.ID)
}

func (o *Output) printAuth(a response.AuthResponse) {
	o.printPlayer(a.Player)
	fmt.Fprintf(o.w, "Token: %s\n", a.SessionToken)
}

func (o *Output) printHand(label string, h response.Hand, hidden int) {
	cards := make([]string, 0, len(h.Cards)+hidden)
	for _, c := range h.Cards {
		cards = append(cards, c.Code)
	}
	for i := 0; i < hidden; i++ {
		cards = append(cards, "??")
	}
	value := fmt.Sprintf("%d", h.Value)
	if hidden > 0 {
		value += "+?"
	} else if h.Soft {
		value = "soft " + value
	}
	fmt.Fprintf(o.w, "%-7s %-20s %s\n", label+":", strings.Join(cards, " "), value)
}

func (o *Output) printGame(g response.Game) {
	fmt.Fprintf(o.w, "Game: %s (%s)\n", g.ID, g.State)
	o.printHand("Player", g.Player, 0)
	o.printHand("Dealer", g.Dealer, g.HiddenCards)
	if g.Result != "" {
		fmt.Fprintf(o.w, "Result: %s\n", g.Result)
	}
}

func (o *Output) printAction(a response.Action) {
	if !a.Applied {
		fmt.Fprintln(o.w, "Game already over")
	}
	o.printGame(a.Game)
	if a.History != nil {
		fmt.Fprintln(o.w)
		o.printHistory(*a.History)
	}
}

func (o *Output) printHistory(h response.History) {
	fmt.Fprintf(o.w, "History: %s\n", h.PlayerID)
	fmt.Fprintf(o.w, "Wins: %d  Losses: %d  Draws: %d\n", h.Wins, h.Losses, h.Draws)
	fmt.Fprintf(o.w, "Max Winning Streak: %d\n", h.MaxStreak)
}

func (o *Output) printLeaderboard(l response.Leaderboard) {
	if len(l.Entries) == 0 {
		fmt.Fprintln(o.w, "No history found.")
		return
	}
	for i, e := range l.Entries {
		fmt.Fprintf(o.w, "%2d. %-24s W%d L%d D%d (best streak %d)\n", i+1, e.PlayerID, e.Wins, e.Losses, e.Draws, e.MaxStreak)
	}
}

func (o *Output) printChannels(c response.Channels) {
	if len(c.Channels) == 0 {
		fmt.Fprintln(o.w, "All channels allowed")
		return
	}
	fmt.Fprintf(o.w, "Allowed channels (%d):\n", len(c.Channels))
	for _, id := range c.Channels {
		fmt.Fprintf(o.w, "  - %s\n", id)
	}
}

func (o *Output) printChannelAllowed(c response.ChannelAllowed) {
	if c.Allowed {
		fmt.Fprintf(o.w, "Channel %s: allowed\n", c.ChannelID)
	} else {
		fmt.Fprintf(o.w, "Channel %s: not allowed\n", c.ChannelID)
	}
}

func (o *Output) printHealth(h response.Health) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Active games: %d\n", h.ActiveGames)
}
