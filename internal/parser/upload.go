package parser

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeDataURL decodes browser upload contents of the form
// "data:<mime>;base64,<payload>". A bare base64 payload is accepted too.
func DecodeDataURL(contents string) ([]byte, error) {
	payload := strings.TrimSpace(contents)
	if strings.HasPrefix(payload, "data:") {
		i := strings.IndexByte(payload, ',')
		if i < 0 {
			return nil, &ParseError{Err: fmt.Errorf("malformed data URL: missing ','")}
		}
		if !strings.HasSuffix(payload[:i], ";base64") {
			return nil, &ParseError{Err: fmt.Errorf("data URL is not base64 encoded")}
		}
		payload = payload[i+1:]
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("decode base64: %w", err)}
	}
	return b, nil
}
