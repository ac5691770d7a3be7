package user

import "time"

// User mirrors the Clerk identity plus app-level preferences. Rows are
// created and updated by the Clerk webhook, never by client requests.
type User struct {
	ID          string         `json:"id"`
	ClerkID     string         `json:"clerkId"`
	Email       string         `json:"email"`
	Username    string         `json:"username"`
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	IsVerified  bool           `json:"isVerified"`
	Preferences map[string]any `json:"preferences"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
