package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/blackjack-go/internal/model"
)

func TestParseButtonID(t *testing.T) {
	tests := []struct {
		id     string
		action string
		owner  model.PlayerID
		ok     bool
	}{
		{"bj:hit:123", actionHit, "123", true},
		{"bj:stand:p_alice", actionStand, "p_alice", true},
		{"bj:stand:a:b", actionStand, "a:b", true},
		{"bj:fold:123", "", "", false},
		{"xx:hit:123", "", "", false},
		{"bj:hit:", "", "", false},
		{"bj:hit", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			action, owner, err := parseButtonID(tt.id)
			if !tt.ok {
				assert.ErrorIs(t, err, errBadCustomID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.action, action)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.id, buttonID(action, owner))
		})
	}
}

func TestGameEmbed(t *testing.T) {
	snap := model.GameSnapshot{
		Owner:       "u1",
		State:       model.GameStatePlayerTurn,
		PlayerHand:  model.MustParseCards("0S", "5C"),
		DealerHand:  model.MustParseCards("9H", "8D"),
		PlayerValue: 15,
		DealerValue: 17,
	}

	embed := gameEmbed(snap)
	assert.Equal(t, "Blackjack Game", embed.Title)
	assert.Equal(t, "Your hand: 15\nDealer's hand: ?", embed.Description)
	assert.Equal(t, embedColor, embed.Color)
	assert.Equal(t, "attachment://table.png", embed.Image.URL)
	assert.Empty(t, embed.Fields)
	assert.Len(t, gameButtons(snap), 1)

	snap.State = model.GameStateFinished
	snap.Outcome = model.OutcomeDraw
	embed = gameEmbed(snap)
	assert.Equal(t, "Your hand: 15\nDealer's hand: 17", embed.Description)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "Result", embed.Fields[0].Name)
	assert.Equal(t, "Draw", embed.Fields[0].Value)
	assert.Empty(t, gameButtons(snap))
}

func TestHistoryEmbed(t *testing.T) {
	embed := historyEmbed("alice", model.HistoryRecord{Wins: 4, Losses: 2, Draws: 1, MaxStreak: 3})

	assert.Equal(t, "alice's Blackjack History", embed.Title)
	want := []*discordgo.MessageEmbedField{
		{Name: "Wins", Value: "4", Inline: true},
		{Name: "Losses", Value: "2", Inline: true},
		{Name: "Draws", Value: "1", Inline: true},
		{Name: "Max Winning Streak", Value: "3"},
	}
	assert.Equal(t, want, embed.Fields)
}

func TestDisplayName(t *testing.T) {
	i := &discordgo.Interaction{Member: &discordgo.Member{User: &discordgo.User{ID: "1", Username: "bob", GlobalName: "Bobby"}}}
	assert.Equal(t, "Bobby", displayName(i))

	i.Member.Nick = "B"
	assert.Equal(t, "B", displayName(i))

	dm := &discordgo.Interaction{User: &discordgo.User{ID: "2", Username: "carol"}}
	assert.Equal(t, "carol", displayName(dm))
	assert.Equal(t, "2", interactionUser(dm).ID)
	assert.False(t, isAdmin(dm))
}
