package tgui

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Data formats inline callback data as "ns:action:payload".
// Payload is kept as-is (no escaping). If you pass structured payload,
// prefer PackJSON.
func Data(ns, action, payload string) string {
	ns = strings.TrimSpace(ns)
	action = strings.TrimSpace(action)
	if payload == "" {
		return ns + ":" + action
	}
	return ns + ":" + action + ":" + payload
}

// Split is the inverse of Data. It never fails: missing parts come back empty.
func Split(data string) (ns, action, payload string) {
	parts := strings.SplitN(data, ":", 3)
	switch len(parts) {
	case 3:
		return parts[0], parts[1], parts[2]
	case 2:
		return parts[0], parts[1], ""
	case 1:
		return parts[0], "", ""
	default:
		return "", "", ""
	}
}

// PackJSON marshals v to JSON then Base64URL encodes it (no padding),
// suitable for the payload part of "ns:action:payload".
func PackJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// MustPackJSON is like PackJSON but returns empty string on error.
func MustPackJSON(v any) string {
	s, _ := PackJSON(v)
	return s
}

// UnpackJSON decodes base64url payload then unmarshals into v.
func UnpackJSON(payload string, v any) error {
	b, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
