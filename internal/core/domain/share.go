package domain

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidSharePayload = errors.New("invalid share payload")

const sharePayloadPrefix = "habit_"

// EncodeSharePayload builds the deep-link start parameter for a habit:
// "habit_<id>" base64url-encoded without padding, the alphabet Telegram
// accepts in start parameters.
func EncodeSharePayload(habitID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(sharePayloadPrefix + habitID))
}

// DecodeSharePayload is the inverse, recovering the habit id from a
// deep-link start parameter.
func DecodeSharePayload(payload string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrInvalidSharePayload
	}
	decoded := string(raw)
	if !strings.HasPrefix(decoded, sharePayloadPrefix) {
		return "", ErrInvalidSharePayload
	}
	id := strings.TrimPrefix(decoded, sharePayloadPrefix)
	if id == "" {
		return "", ErrInvalidSharePayload
	}
	return id, nil
}
