package loader

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oakwood-commons/jvx/pkg/value"
)

// IsJWT detects if input looks like a JWT token.
// A valid JWT has exactly 3 dot-separated parts where the first two
// are valid base64url-encoded JSON objects.
func IsJWT(input string) bool {
	input = strings.TrimPrefix(input, "Bearer ")
	input = strings.TrimSpace(input)

	parts := strings.Split(input, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if len(part) == 0 {
			return false
		}
	}

	for i := 0; i < 2; i++ {
		decoded, err := base64.RawURLEncoding.DecodeString(parts[i])
		if err != nil {
			return false
		}
		var obj map[string]any
		if err := json.Unmarshal(decoded, &obj); err != nil {
			return false
		}
	}

	// Signature just needs to be valid base64url (can contain any bytes)
	_, err := base64.RawURLEncoding.DecodeString(parts[2])
	return err == nil
}

// DecodeJWT splits and decodes a JWT token into an object with header,
// payload and signature members. Header and payload claims keep their
// encoded order; the signature stays base64url text.
func DecodeJWT(input string) (value.Value, error) {
	input = strings.TrimPrefix(input, "Bearer ")
	input = strings.TrimSpace(input)

	parts := strings.Split(input, ".")
	if len(parts) != 3 {
		return value.Value{}, fmt.Errorf("invalid JWT: expected 3 parts, got %d", len(parts))
	}

	header, err := decodeJWTSegment(parts[0])
	if err != nil {
		return value.Value{}, fmt.Errorf("invalid JWT header: %w", err)
	}
	payload, err := decodeJWTSegment(parts[1])
	if err != nil {
		return value.Value{}, fmt.Errorf("invalid JWT payload: %w", err)
	}

	return value.Object(
		value.M("header", header),
		value.M("payload", payload),
		value.M("signature", value.String(parts[2])),
	), nil
}

func decodeJWTSegment(part string) (value.Value, error) {
	raw, err := base64.RawURLEncoding.DecodeString(part)
	if err != nil {
		return value.Value{}, err
	}
	v, err := value.DecodeJSON(raw)
	if err != nil {
		return value.Value{}, err
	}
	if v.Kind() != value.KindObject {
		return value.Value{}, fmt.Errorf("expected JSON object, got %s", v.Kind())
	}
	return v, nil
}

func loadJWT(input string) ([]value.Value, error) {
	decoded, err := DecodeJWT(input)
	if err != nil {
		return nil, err
	}
	return []value.Value{decoded}, nil
}
