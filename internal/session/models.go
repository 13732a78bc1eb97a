package session

// Durable storage keys. The values are the raw token and the JSON encoded User.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// User is the profile record returned by the backend alongside the token
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Session is a point-in-time view of the client session
type Session struct {
	Token         string `json:"token"`
	User          *User  `json:"user"`
	Authenticated bool   `json:"authenticated"`
}
