package credential

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
)

// DerivedKeyProvider derives a per-event signing key from a single root
// secret, so a leaked event key never exposes another event's credentials.
type DerivedKeyProvider struct {
	root []byte
}

func NewDerivedKeyProvider(rootSecret string) (*DerivedKeyProvider, error) {
	if rootSecret == "" {
		return nil, errors.New("credential root secret is empty")
	}
	return &DerivedKeyProvider{root: []byte(rootSecret)}, nil
}

func (p *DerivedKeyProvider) KeyForEvent(eventID string) ([]byte, error) {
	mac := hmac.New(sha256.New, p.root)
	mac.Write([]byte(eventID))
	return mac.Sum(nil), nil
}
