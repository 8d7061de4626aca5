package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("my-secure-password")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !VerifyPassword("my-secure-password", hash) {
		t.Error("Expected password to verify against its hash")
	}
	if VerifyPassword("wrong-password", hash) {
		t.Error("Expected wrong password to fail verification")
	}
}

func TestHashPassword_TooShort(t *testing.T) {
	_, err := HashPassword("short")
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("Expected ErrPasswordTooShort, got: %v", err)
	}
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73))
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("Expected ErrPasswordTooLong, got: %v", err)
	}
}

func TestHashPassword_MaxLength(t *testing.T) {
	// Exactly 72 bytes is still within the bcrypt limit
	hash, err := HashPassword(strings.Repeat("a", 72))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !VerifyPassword(strings.Repeat("a", 72), hash) {
		t.Error("Expected 72-char password to verify")
	}
}

func TestHashPasswordWithCost(t *testing.T) {
	hash, err := HashPasswordWithCost("my-secure-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("Expected parseable hash, got: %v", err)
	}
	if cost != bcrypt.MinCost {
		t.Errorf("Expected cost %d, got %d", bcrypt.MinCost, cost)
	}
}

func TestNeedsRehash(t *testing.T) {
	weak, _ := HashPasswordWithCost("my-secure-password", bcrypt.MinCost)
	if !NeedsRehash(weak) {
		t.Error("Expected low-cost hash to need rehash")
	}

	current, _ := HashPassword("my-secure-password")
	if NeedsRehash(current) {
		t.Error("Expected current-cost hash to not need rehash")
	}

	if !NeedsRehash("not-a-bcrypt-hash") {
		t.Error("Expected invalid hash to need rehash")
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	first, err := GenerateRandomPassword()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(first) != 24 {
		t.Errorf("Expected 24-character password, got %d", len(first))
	}

	second, err := GenerateRandomPassword()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if first == second {
		t.Error("Expected distinct random passwords")
	}
}

func TestUserRole_IsValid(t *testing.T) {
	if !RoleUser.IsValid() || !RoleAdmin.IsValid() {
		t.Error("Expected built-in roles to be valid")
	}
	if UserRole("superuser").IsValid() {
		t.Error("Expected unknown role to be invalid")
	}
}

func TestUser_Validate(t *testing.T) {
	valid := &User{Username: "alice", Role: "user"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid user, got: %v", err)
	}

	noName := &User{Role: "user"}
	if err := noName.Validate(); err == nil {
		t.Error("Expected error for missing username")
	}

	badRole := &User{Username: "bob", Role: "superuser"}
	if err := badRole.Validate(); err == nil {
		t.Error("Expected error for invalid role")
	}
}
