package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// newTestTokenService uses a fixed secret so tests are deterministic.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

func TestNewTokenService_ShortSecret(t *testing.T) {
	if _, err := NewTokenService("short"); err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_ValidSecret(t *testing.T) {
	if _, err := NewTokenService("this-is-16-chars"); err != nil {
		t.Fatalf("NewTokenService() unexpected error for valid secret: %v", err)
	}
}

// =========================================================================
// ISSUE / VERIFY
// =========================================================================

func TestIssueVerify_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	tests := []struct {
		email string
		role  string
	}{
		{"kim@college.ac.kr", "ROLE_USER"},
		{"admin@college.ac.kr", "ROLE_ADMIN"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.email+"/"+tt.role, func(t *testing.T) {
			token, err := ts.Issue(tt.email, tt.role, time.Hour)
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}
			if strings.Count(token, ".") != 2 {
				t.Errorf("Issue() token doesn't look like a JWT: %q", token)
			}

			claims, err := ts.Verify(token)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if claims.Email != tt.email || claims.Role != tt.role {
				t.Errorf("Verify() = (%q, %q), want (%q, %q)", claims.Email, claims.Role, tt.email, tt.role)
			}

			email, err := ts.Claim(token, ClaimEmail)
			if err != nil {
				t.Fatalf("Claim(email) error = %v", err)
			}
			if email != tt.email {
				t.Errorf("Claim(email) = %q, want %q", email, tt.email)
			}
		})
	}
}

func TestIssue_SetsIssuedAtAndExpiration(t *testing.T) {
	ts := newTestTokenService(t)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return fixed }

	token, err := ts.Issue("kim@college.ac.kr", "ROLE_USER", 2*time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	claims, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !claims.IssuedAt.Time.Equal(fixed) {
		t.Errorf("iat = %v, want %v", claims.IssuedAt.Time, fixed)
	}
	if !claims.ExpiresAt.Time.Equal(fixed.Add(2 * time.Hour)) {
		t.Errorf("exp = %v, want %v", claims.ExpiresAt.Time, fixed.Add(2*time.Hour))
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	ts1 := newTestTokenService(t)
	ts2, _ := NewTokenService("completely-different-secret!!")

	token, _ := ts1.Issue("kim@college.ac.kr", "ROLE_USER", time.Hour)

	_, err := ts2.Verify(token)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("Verify() error = %v, want ErrInvalidSignature", err)
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Issue("kim@college.ac.kr", "ROLE_USER", time.Hour)
	forged, _ := ts.Issue("admin@college.ac.kr", "ROLE_ADMIN", time.Hour)

	// Splice the forged payload onto the original signature.
	a := strings.Split(token, ".")
	b := strings.Split(forged, ".")
	spliced := a[0] + "." + b[1] + "." + a[2]

	if _, err := ts.Verify(spliced); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("Verify() error = %v, want ErrInvalidSignature", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	ts := newTestTokenService(t)

	for _, token := range []string{"", "not.a.jwt", "garbage", "a.b"} {
		t.Run(token, func(t *testing.T) {
			if _, err := ts.Verify(token); !errors.Is(err, ErrMalformed) {
				t.Errorf("Verify(%q) error = %v, want ErrMalformed", token, err)
			}
		})
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	ts := newTestTokenService(t)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: "kim@college.ac.kr"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing with none: %v", err)
	}

	if _, err := ts.Verify(token); err == nil {
		t.Fatal("Verify() accepted an unsigned token")
	}
}

func TestVerify_AcceptsExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Issue("kim@college.ac.kr", "ROLE_USER", -time.Hour)

	claims, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v, want nil for an expired but valid token", err)
	}
	if claims.Email != "kim@college.ac.kr" {
		t.Errorf("Email = %q", claims.Email)
	}
}

// =========================================================================
// EXPIRY
// =========================================================================

func TestIsExpired(t *testing.T) {
	ts := newTestTokenService(t)

	tests := []struct {
		name string
		ttl  time.Duration
		want bool
	}{
		{"one hour", time.Hour, false},
		{"zero ttl", 0, true},
		{"negative ttl", -time.Minute, true},
		{"sub-second ttl", 500 * time.Millisecond, false},
		{"one nanosecond", time.Nanosecond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
			ts.now = func() time.Time { return fixed }

			token, err := ts.Issue("kim@college.ac.kr", "ROLE_USER", tt.ttl)
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}
			got, err := ts.IsExpired(token)
			if err != nil {
				t.Fatalf("IsExpired() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsExpired_AfterClockAdvances(t *testing.T) {
	ts := newTestTokenService(t)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return start }

	token, _ := ts.Issue("kim@college.ac.kr", "ROLE_USER", time.Minute)

	ts.now = func() time.Time { return start.Add(2 * time.Minute) }
	expired, err := ts.IsExpired(token)
	if err != nil {
		t.Fatalf("IsExpired() error = %v", err)
	}
	if !expired {
		t.Error("IsExpired() = false after the clock passed exp")
	}
}

func TestIssue_SubSecondTTLRoundsUpToNextSecond(t *testing.T) {
	ts := newTestTokenService(t)
	issued := time.Date(2026, 3, 1, 9, 0, 0, 700*int(time.Millisecond), time.UTC)
	ts.now = func() time.Time { return issued }

	token, err := ts.Issue("kim@college.ac.kr", "ROLE_USER", 500*time.Millisecond)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"at issue", issued, false},
		{"before the boundary", time.Date(2026, 3, 1, 9, 0, 1, 999*int(time.Millisecond), time.UTC), false},
		{"on the boundary", time.Date(2026, 3, 1, 9, 0, 2, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.now = func() time.Time { return tt.at }
			got, err := ts.IsExpired(token)
			if err != nil {
				t.Fatalf("IsExpired() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsExpired() at %s = %v, want %v", tt.at.Format(time.StampMilli), got, tt.want)
			}
		})
	}
}

func TestIsExpired_InvalidToken(t *testing.T) {
	ts := newTestTokenService(t)
	if _, err := ts.IsExpired("garbage"); !errors.Is(err, ErrMalformed) {
		t.Errorf("IsExpired() error = %v, want ErrMalformed", err)
	}
}

// =========================================================================
// CLAIM
// =========================================================================

func TestClaim(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Issue("kim@college.ac.kr", "ROLE_ADMIN", time.Hour)

	role, err := ts.Claim(token, ClaimRole)
	if err != nil || role != "ROLE_ADMIN" {
		t.Errorf("Claim(role) = (%q, %v), want ROLE_ADMIN", role, err)
	}

	if _, err := ts.Claim(token, "nickname"); !errors.Is(err, ErrMalformed) {
		t.Errorf("Claim(unknown) error = %v, want ErrMalformed", err)
	}
	if _, err := ts.Claim("garbage", ClaimEmail); !errors.Is(err, ErrMalformed) {
		t.Errorf("Claim(garbage) error = %v, want ErrMalformed", err)
	}
}
