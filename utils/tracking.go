package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateTrackingToken returns an opaque globally-unique token embedded in
// a message to correlate open-beacon hits back to the ledger row.
func GenerateTrackingToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// MessageID builds the Message-ID header stamped on an outgoing message,
// derived from its tracking token so provider webhook events can be
// correlated by either identifier.
func MessageID(token, domain string) string {
	if domain == "" {
		domain = "localhost"
	}
	return "<" + token + "@" + domain + ">"
}

// MailDomain extracts the domain part of an email address, for Message-ID
// generation.
func MailDomain(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i+1 < len(addr) {
		return addr[i+1:]
	}
	return "localhost"
}

// TrackingPixelURL builds the open-beacon URL for a tracking token.
func TrackingPixelURL(baseURL, token string) string {
	return fmt.Sprintf("%s/track/open/%s.png", strings.TrimRight(baseURL, "/"), token)
}

// InjectTrackingPixel appends a 1x1 beacon image referencing the token,
// inserted immediately before the closing body tag when one is present.
func InjectTrackingPixel(body, baseURL, token string) string {
	pixel := fmt.Sprintf(`<img src="%s" width="1" height="1" alt="" style="display:none">`,
		TrackingPixelURL(baseURL, token))

	if strings.Contains(body, "</body>") {
		return strings.Replace(body, "</body>", pixel+"</body>", 1)
	}
	return body + pixel
}

// TransparentPixel is the 1x1 transparent GIF served by the open-beacon
// endpoint regardless of whether the token was recognized.
func TransparentPixel() []byte {
	return []byte{
		0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
		0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x21,
		0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00,
		0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44,
		0x01, 0x00, 0x3b,
	}
}
