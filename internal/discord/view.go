package discord

import (
	"bytes"
	"errors"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mcoot/blackjack-go/internal/model"
)

const (
	embedColor     = 0x2ecc71
	tableFileName  = "table.png"
	customIDPrefix = "bj"

	actionHit   = "hit"
	actionStand = "stand"
)

var errBadCustomID = errors.New("malformed button id")

// buttonID encodes the action and the owning player into a button custom ID
func buttonID(action string, owner model.PlayerID) string {
	return customIDPrefix + ":" + action + ":" + string(owner)
}

// parseButtonID is the inverse of buttonID
func parseButtonID(id string) (action string, owner model.PlayerID, err error) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) != 3 || parts[0] != customIDPrefix || parts[2] == "" {
		return "", "", errBadCustomID
	}
	switch parts[1] {
	case actionHit, actionStand:
		return parts[1], model.PlayerID(parts[2]), nil
	default:
		return "", "", errBadCustomID
	}
}

// gameButtons returns the Hit and Stand row, or nothing once the game is over
func gameButtons(g model.GameSnapshot) []discordgo.MessageComponent {
	if g.State.IsTerminal() {
		return []discordgo.MessageComponent{}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Hit",
					Style:    discordgo.PrimaryButton,
					CustomID: buttonID(actionHit, g.Owner),
				},
				discordgo.Button{
					Label:    "Stand",
					Style:    discordgo.SecondaryButton,
					CustomID: buttonID(actionStand, g.Owner),
				},
			},
		},
	}
}

// gameEmbed shows both hand values; the dealer's stays "?" until the game ends
func gameEmbed(g model.GameSnapshot) *discordgo.MessageEmbed {
	dealer := "?"
	if !g.HideDealerCard() {
		dealer = strconv.Itoa(g.DealerValue)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Blackjack Game",
		Description: "Your hand: " + strconv.Itoa(g.PlayerValue) + "\nDealer's hand: " + dealer,
		Color:       embedColor,
		Image:       &discordgo.MessageEmbedImage{URL: "attachment://" + tableFileName},
	}

	switch g.State {
	case model.GameStateFinished:
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Result",
			Value: resultText(g.Outcome),
		})
	case model.GameStateAbandoned:
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Result",
			Value: "Game expired",
		})
	}
	return embed
}

func resultText(o model.Outcome) string {
	switch o {
	case model.OutcomeWin:
		return "You Win! 🎉"
	case model.OutcomeLose:
		return "You Lose 😢"
	default:
		return "Draw"
	}
}

// historyEmbed lays out a player's record
func historyEmbed(displayName string, rec model.HistoryRecord) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: displayName + "'s Blackjack History",
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Wins", Value: strconv.Itoa(rec.Wins), Inline: true},
			{Name: "Losses", Value: strconv.Itoa(rec.Losses), Inline: true},
			{Name: "Draws", Value: strconv.Itoa(rec.Draws), Inline: true},
			{Name: "Max Winning Streak", Value: strconv.Itoa(rec.MaxStreak)},
		},
	}
}

// tableFile wraps rendered PNG bytes as a message attachment
func tableFile(png []byte) *discordgo.File {
	return &discordgo.File{
		Name:        tableFileName,
		ContentType: "image/png",
		Reader:      bytes.NewReader(png),
	}
}
