package state

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/carcost/internal/config"
)

// EncodeShareToken packs a configuration into a URL-safe token.
func EncodeShareToken(conf *config.Configuration) (string, error) {
	data, err := Marshal(conf)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeShareToken unpacks a token made by EncodeShareToken. Tokens in
// standard base64, with or without padding, are accepted too.
func DecodeShareToken(token string) (*config.Configuration, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, errors.New("share token is empty")
	}
	// A '+' that went through a query string unescaped arrives as a space.
	trimmed = strings.ReplaceAll(trimmed, " ", "+")

	data, err := decodeBase64(trimmed)
	if err != nil {
		return nil, fmt.Errorf("share token is not base64: %w", err)
	}

	conf, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("share token: %w", err)
	}
	return conf, nil
}

func decodeBase64(token string) ([]byte, error) {
	unpadded := strings.TrimRight(token, "=")
	if strings.ContainsAny(unpadded, "+/") {
		return base64.RawStdEncoding.DecodeString(unpadded)
	}
	return base64.RawURLEncoding.DecodeString(unpadded)
}
