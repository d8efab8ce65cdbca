package model

// ChannelID identifies a chat channel in which games may be started
type ChannelID string
