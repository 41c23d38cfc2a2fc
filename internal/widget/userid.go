package widget

import (
	"context"
	"fmt"
	"io"
)

// UserIDKey is the storage key of the persisted user identifier.
const UserIDKey = "user_id"

const (
	userIDPrefix   = "web_user_"
	userIDLength   = 9
	userIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// NewUserID returns "web_user_" followed by nine random base-36 characters.
func NewUserID(entropy io.Reader) (string, error) {
	out := make([]byte, 0, userIDLength)
	buf := make([]byte, 16)
	// 252 is the largest multiple of 36 below 256; rejecting bytes at or
	// above it keeps every character equally likely.
	for len(out) < userIDLength {
		if _, err := io.ReadFull(entropy, buf); err != nil {
			return "", fmt.Errorf("read entropy: %w", err)
		}
		for _, b := range buf {
			if b >= 252 {
				continue
			}
			out = append(out, userIDAlphabet[int(b)%len(userIDAlphabet)])
			if len(out) == userIDLength {
				break
			}
		}
	}
	return userIDPrefix + string(out), nil
}

// ResolveUserID returns the stored identifier, generating and persisting
// one on first use. A storage write failure still returns the new id so
// the caller can proceed for this session.
func ResolveUserID(ctx context.Context, s Storage, entropy io.Reader) (string, error) {
	if s != nil {
		v, ok, err := s.Get(ctx, UserIDKey)
		if err != nil {
			return "", fmt.Errorf("load user id: %w", err)
		}
		if ok && v != "" {
			return v, nil
		}
	}

	id, err := NewUserID(entropy)
	if err != nil {
		return "", err
	}
	if s != nil {
		if err := s.Set(ctx, UserIDKey, id); err != nil {
			return id, fmt.Errorf("persist user id: %w", err)
		}
	}
	return id, nil
}
