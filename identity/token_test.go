package identity

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ridemyway/ridemyway/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, expiresAt, err := issuer.Issue(domain.Principal{ID: 42, Role: domain.RoleDriver})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Error("expected expiry in the future")
	}

	p, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if p.ID != 42 || p.Role != domain.RoleDriver {
		t.Errorf("unexpected principal %+v", p)
	}
}

func TestTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, _, _ := issuer.Issue(domain.Principal{ID: 1, Role: domain.RolePassenger})

	other := NewTokenIssuer("other-secret", time.Hour)
	if _, err := other.Validate(token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for wrong key, got %v", err)
	}

	expired := NewTokenIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, _ := expired.Issue(domain.Principal{ID: 1, Role: domain.RolePassenger})
	if _, err := issuer.Validate(old); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for expired token, got %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: domain.RoleDriver})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := issuer.Validate(unsigned); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for unsigned token, got %v", err)
	}

	if _, err := issuer.Validate("garbage"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for garbage, got %v", err)
	}
}
