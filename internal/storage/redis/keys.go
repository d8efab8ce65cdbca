package redis

import (
	"fmt"

	"github.com/mcoot/blackjack-go/internal/model"
)

// Key prefix for all blackjack data
const keyPrefix = "bjgame"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// historyKey returns the Redis key for one player's HistoryRecord
func historyKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:history:%s", keyPrefix, id)
}

// historyIndexKey returns the Redis key for the SET of player IDs with history
func historyIndexKey() string {
	return fmt.Sprintf("%s:idx:history", keyPrefix)
}

// channelsKey returns the Redis key for the ordered channel allow-list
func channelsKey() string {
	return fmt.Sprintf("%s:channels", keyPrefix)
}
