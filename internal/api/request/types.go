package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// AllowChannelRequest is the request body for adding a channel to the allow-list
type AllowChannelRequest struct {
	ChannelID string `json:"channel_id"`
}
