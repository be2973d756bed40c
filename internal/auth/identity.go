// Package auth defines the session-state snapshot handed to services.
// Handlers build an Identity per request from the session and user document;
// services receive it as a plain value and never reach into globals.
package auth

// Identity describes the acting user for a single request.
type Identity struct {
	UID         string
	DisplayName string
	Email       string
}

// Anonymous reports whether the identity carries no authenticated user.
func (id Identity) Anonymous() bool {
	return id.UID == ""
}
