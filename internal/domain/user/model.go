package user

import (
	"strings"
	"time"
)

// User is a registered bot user keyed by the telegram identity.
type User struct {
	ID         uint
	TelegramID int64
	FullName   string
	IsAdmin    bool
	CreatedAt  time.Time
}

// Surname returns the first whitespace separated token of fullName.
func Surname(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// BootstrapResult is the outcome of a first admin claim.
type BootstrapResult int

const (
	BootstrapGranted BootstrapResult = iota
	BootstrapNotRegistered
	BootstrapAdminExists
)
