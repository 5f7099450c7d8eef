package util

import (
	"fmt"
	"strings"
)

// session types
const (
	SessionTypePrivate = "private"
	SessionTypeGroup   = "group"
)

// ValidateUsername checks that a username is non-empty and of sane length.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username is empty")
	}
	if len(username) > 64 {
		return fmt.Errorf("username too long, max 64 characters")
	}
	return nil
}

// ValidatePassword checks that a password is non-empty.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is empty")
	}
	if len(password) > 72 { // bcrypt input limit
		return fmt.Errorf("password too long, max 72 characters")
	}
	return nil
}

// ValidateSessionName checks a todo-list session display name.
func ValidateSessionName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("session name is empty")
	}
	if len(name) > 64 {
		return fmt.Errorf("session name too long, max 64 characters")
	}
	return nil
}

// ValidateSessionType checks the private/group discriminator.
func ValidateSessionType(sessionType string) error {
	if sessionType != SessionTypePrivate && sessionType != SessionTypeGroup {
		return fmt.Errorf("invalid session type %q, want private or group", sessionType)
	}
	return nil
}

// ValidateTaskTitle checks that a task title is non-blank.
func ValidateTaskTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("task title is empty")
	}
	if len(title) > 255 {
		return fmt.Errorf("task title too long, max 255 characters")
	}
	return nil
}
