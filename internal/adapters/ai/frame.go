package ai

import (
	"encoding/base64"
	"errors"
	"strings"
)

var errMalformedFrame = errors.New("malformed frame payload")

const defaultImageMIME = "image/jpeg"

// imageURL turns a frame into a data URL the vision model accepts.
// Frames arrive either as a data URL or as bare base64 image bytes.
func imageURL(frame string) (string, error) {
	frame = strings.TrimSpace(frame)
	payload := frame
	prefix := "data:" + defaultImageMIME + ";base64,"
	if strings.HasPrefix(frame, "data:") {
		head, data, ok := strings.Cut(frame, ",")
		if !ok || !strings.HasSuffix(head, ";base64") || !strings.HasPrefix(head, "data:image/") {
			return "", errMalformedFrame
		}
		payload = data
		prefix = head + ","
	}
	if payload == "" {
		return "", errMalformedFrame
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return "", errMalformedFrame
	}
	return prefix + payload, nil
}
