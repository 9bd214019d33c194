package alert

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/0xdefence/basetrace/internal/domain/model"
)

// Fingerprint identifies an alert by rule, address and evidence window.
// Evidence numbers do not take part.
func Fingerprint(rule model.RuleType, address, window string) string {
	sum := sha256.Sum256([]byte(string(rule) + "|" + strings.ToLower(address) + "|" + window))
	return hex.EncodeToString(sum[:])
}
