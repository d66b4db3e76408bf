// Package domain contains entity without logic, just meta-data
package domain

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
)

const (
	MaxUsernameLen  = 36
	DefaultLanguage = "en"
)

type UserID string

// User is the identity bound to one live connection.
// CurrentRoom is empty while the user is not in any room.
type User struct {
	ID          UserID `json:"userId"`
	Username    string `json:"username"`
	Anonymous   bool   `json:"isAnonymous"`
	Language    string `json:"language"`
	CurrentRoom RoomID `json:"-"`
}

var anonAliasPrefix = regexp.MustCompile(`^Anonymous\d{4}`)

// AnonymousAlias generates a display name of the form Anonymous####.
// Numbers are drawn independently per call and never reserved, so two
// anonymous users can collide on the same alias.
func AnonymousAlias() string {
	return fmt.Sprintf("Anonymous%d", fourDigits())
}

// FallbackUsername is used when stripping an anonymous alias leaves nothing.
func FallbackUsername() string {
	return fmt.Sprintf("User%d", fourDigits())
}

// StripAnonymousAlias removes a leading Anonymous#### prefix, if present.
func StripAnonymousAlias(name string) string {
	return strings.TrimSpace(anonAliasPrefix.ReplaceAllString(name, ""))
}

func fourDigits() int {
	return 1000 + rand.Intn(9000)
}
