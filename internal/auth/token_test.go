package auth

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 1)

	token, expiresAt, err := tm.GenerateToken(42, "john_doe")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if expiresAt.IsZero() {
		t.Error("expiry not set")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "john_doe" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 1).GenerateToken(1, "u")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := NewTokenManager("secret-b", 1).ParseToken(token); err == nil {
		t.Error("token signed with a different secret must not parse")
	}
	if _, err := NewTokenManager("secret-a", 1).ParseToken("not.a.token"); err == nil {
		t.Error("garbage token must not parse")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password", 4)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if err := ComparePassword(hash, "password"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Error("wrong password accepted")
	}
}
