package constants

const (
	// ContextKeyUserID is the session and gin-context key holding the
	// authenticated user's id.
	ContextKeyUserID = "user_id"

	SessionName = "campaign_session"

	MinPasswordLength = 8

	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
