package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// accountIDPrefix is the domain prefix of internal account identifiers.
const accountIDPrefix = "ACC"

var accountIDPattern = regexp.MustCompile(`^ACC-[0-9a-zA-Z]{8}$`)

// AccountID is the internal system identifier of an account, of the form
// ACC-xxxxxxxx. It is distinct from the externally visible AccountNumber
// and is assigned once, by the persistence collaborator at first save.
type AccountID string

// NewAccountID validates an identifier read from a trusted store.
func NewAccountID(value string) (AccountID, error) {
	if !accountIDPattern.MatchString(value) {
		return "", ErrInvalidAccountIDFormat
	}
	return AccountID(value), nil
}

// GenerateAccountID produces a fresh identifier with a UUID-derived
// 8-character random suffix.
func GenerateAccountID() AccountID {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return AccountID(accountIDPrefix + "-" + suffix)
}

func (id AccountID) String() string { return string(id) }
