package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/devpulse/api/internal/utils"
)

const signaturePrefix = "sha256="

// verifySignature checks the X-Hub-Signature-256 header against an
// HMAC-SHA256 of the raw body. The comparison is constant-time.
func (w *inst) verifySignature(signature string, body []byte) bool {
	if w.secret == "" || !strings.HasPrefix(signature, signaturePrefix) {
		return false
	}

	provided, err := hex.DecodeString(strings.TrimPrefix(signature, signaturePrefix))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, utils.S2B(w.secret))
	mac.Write(body)

	return hmac.Equal(provided, mac.Sum(nil))
}
