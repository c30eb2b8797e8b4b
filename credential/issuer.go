package credential

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lithammer/shortuuid/v3"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
)

// Claims is the signed payload bound to exactly one ticket. The nonce makes
// every minted token unique even across re-created tickets.
type Claims struct {
	TicketID string `json:"ticket_id"`
	EventID  string `json:"event_id"`
	Nonce    string `json:"nonce"`
	jwt.RegisteredClaims
}

// KeyProvider supplies the per-event signing key. Key management lives with
// the secret provider, not here.
type KeyProvider interface {
	KeyForEvent(eventID string) ([]byte, error)
}

// Issuer mints and verifies credential tokens. The token is opaque to every
// collaborator except this package and the check-in engine.
type Issuer struct {
	keys KeyProvider
}

func NewIssuer(keys KeyProvider) *Issuer {
	if keys == nil {
		panic("key provider is nil")
	}
	return &Issuer{keys: keys}
}

// Issue returns the credential token for a ticket. Tickets carry their token
// from the moment they are minted; re-requesting returns the stored token
// unchanged.
func (i *Issuer) Issue(ticket entity.Ticket) (string, error) {
	if ticket.CredentialToken != "" {
		return ticket.CredentialToken, nil
	}

	key, err := i.keys.KeyForEvent(ticket.EventID)
	if err != nil {
		return "", fmt.Errorf("could not get signing key for event %s: %w", ticket.EventID, err)
	}

	claims := Claims{
		TicketID: ticket.ID,
		EventID:  ticket.EventID,
		Nonce:    shortuuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now().UTC()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("could not sign credential: %w", err)
	}

	return token, nil
}

// Decode verifies the signature and structure of a presented token. Every
// failure mode collapses into ErrInvalidSignature: the scanner only needs to
// know the credential is not ours.
func (i *Issuer) Decode(tokenString string) (Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		claims, ok := t.Claims.(*Claims)
		if !ok || claims.EventID == "" {
			return nil, fmt.Errorf("malformed claims")
		}

		return i.keys.KeyForEvent(claims.EventID)
	})
	if err != nil || !token.Valid {
		return Claims{}, entity.ErrInvalidSignature
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.TicketID == "" || claims.EventID == "" {
		return Claims{}, entity.ErrInvalidSignature
	}

	return *claims, nil
}
