package model

import "time"

// Activity actions. The audit trail is append-only; records are never
// updated or deleted by normal flow.
const (
	ActionLogin   = "LOGIN"
	ActionLogout  = "LOGOUT"
	ActionCreate  = "CREATE"
	ActionUpdate  = "UPDATE"
	ActionDelete  = "DELETE"
	ActionApprove = "APPROVE"
)

const (
	ItemListing = "LISTING"
	ItemBlog    = "BLOG"
	ItemUser    = "USER"
)

type Activity struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id,omitempty"`
	Action    string         `json:"action"`
	ItemType  string         `json:"item_type,omitempty"`
	ItemID    string         `json:"item_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IP        string         `json:"ip,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type ActivityQuery struct {
	UserID   string
	Action   string
	ItemType string
	From     string
	To       string
	Page     int
	Limit    int
}
