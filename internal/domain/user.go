// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const (
	MaxUsernameLen = 64
	MaxDeviceLen   = 128
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
	ErrDeviceEmpty     = errors.New("device name empty")
	ErrDeviceTooLong   = errors.New("device name too long")
)

// PresenceEntry pairs a connection with the name it announced.
type PresenceEntry struct {
	ID   ConnID `json:"id"`
	Name string `json:"name"`
}

func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}

func ValidateDevice(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrDeviceEmpty
	}
	if len(name) > MaxDeviceLen {
		return ErrDeviceTooLong
	}
	return nil
}
