package users

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dawnhq/stickyboard/internal/auth"
)

const (
	testSecret   = "users-test-secret"
	testIssuer   = "dawn-backend"
	testAudience = "dawn-api"
)

type fakeStore struct {
	byTokenID map[string]User
	nextID    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{byTokenID: map[string]User{}}
}

func (f *fakeStore) GetByTokenIdentifier(_ context.Context, tokenIdentifier string) (User, error) {
	user, ok := f.byTokenID[tokenIdentifier]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (User, error) {
	for _, user := range f.byTokenID {
		if user.ID == id {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (f *fakeStore) Upsert(_ context.Context, params UpsertParams) (string, error) {
	if existing, ok := f.byTokenID[params.TokenIdentifier]; ok {
		existing.Name = params.Name
		existing.ProfileImageURL = params.ProfileImageURL
		existing.CompanyID = params.CompanyID
		existing.UpdatedAt = time.Now()
		f.byTokenID[params.TokenIdentifier] = existing
		return existing.ID, nil
	}
	f.nextID++
	user := User{
		ID:              fmt.Sprintf("u-%d", f.nextID),
		TokenIdentifier: params.TokenIdentifier,
		Name:            params.Name,
		Email:           params.Email,
		ProfileImageURL: params.ProfileImageURL,
		CompanyID:       params.CompanyID,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	f.byTokenID[params.TokenIdentifier] = user
	return user.ID, nil
}

func mintToken(t *testing.T, sub, companyID string) string {
	t.Helper()
	token, err := auth.Sign(auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		CompanyID: companyID,
	}, testSecret)
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}
	return token
}

func newService(store Store) *Service {
	return NewService(nil, auth.NewVerifier(testSecret, testIssuer, testAudience), store)
}

func TestAuthenticate(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)
	ctx := context.Background()

	id, err := svc.CreateOrUpdate(ctx, UpsertRequest{
		Token:           mintToken(t, "u1", "acme"),
		TokenIdentifier: "u1",
		Name:            "Ada",
		Email:           "ada@example.com",
	})
	if err != nil {
		t.Fatalf("CreateOrUpdate error: %v", err)
	}

	user, err := svc.Authenticate(ctx, mintToken(t, "u1", "acme"))
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if user.ID != id {
		t.Errorf("ID = %q, want %q", user.ID, id)
	}
	if user.CompanyID != "acme" {
		t.Errorf("CompanyID = %q, want acme (fallback from token)", user.CompanyID)
	}
}

func TestAuthenticateUnknownSubjectCollapses(t *testing.T) {
	svc := newService(newFakeStore())

	_, err := svc.Authenticate(context.Background(), mintToken(t, "ghost", ""))
	if err == nil {
		t.Fatal("expected error for unknown subject")
	}
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("error = %v, want it to wrap auth.ErrInvalidToken", err)
	}
}

func TestAuthenticateBadToken(t *testing.T) {
	svc := newService(newFakeStore())

	_, err := svc.Authenticate(context.Background(), "not.a.token")
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("error = %v, want auth.ErrInvalidToken", err)
	}
}

func TestCreateOrUpdateIdentifierMismatch(t *testing.T) {
	svc := newService(newFakeStore())

	_, err := svc.CreateOrUpdate(context.Background(), UpsertRequest{
		Token:           mintToken(t, "u1", ""),
		TokenIdentifier: "u2",
		Name:            "Ada",
	})
	if !errors.Is(err, ErrIdentifierMismatch) {
		t.Fatalf("error = %v, want ErrIdentifierMismatch", err)
	}
}

func TestCreateOrUpdatePatchesExisting(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)
	ctx := context.Background()

	first, err := svc.CreateOrUpdate(ctx, UpsertRequest{
		Token:           mintToken(t, "u1", "acme"),
		TokenIdentifier: "u1",
		Name:            "Ada",
		Email:           "ada@example.com",
	})
	if err != nil {
		t.Fatalf("first CreateOrUpdate error: %v", err)
	}

	second, err := svc.CreateOrUpdate(ctx, UpsertRequest{
		Token:           mintToken(t, "u1", "acme"),
		TokenIdentifier: "u1",
		Name:            "Ada Lovelace",
		ProfileImageURL: "https://img.example.com/ada.png",
		CompanyID:       "acme-eu",
	})
	if err != nil {
		t.Fatalf("second CreateOrUpdate error: %v", err)
	}
	if first != second {
		t.Errorf("upsert created a second record: %q vs %q", first, second)
	}

	user, err := svc.Authenticate(ctx, mintToken(t, "u1", "acme"))
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if user.Name != "Ada Lovelace" {
		t.Errorf("Name = %q, want patched name", user.Name)
	}
	if user.CompanyID != "acme-eu" {
		t.Errorf("CompanyID = %q, want explicit acme-eu over token fallback", user.CompanyID)
	}
}

func TestCreateOrUpdateRequiresName(t *testing.T) {
	svc := newService(newFakeStore())

	_, err := svc.CreateOrUpdate(context.Background(), UpsertRequest{
		Token:           mintToken(t, "u1", ""),
		TokenIdentifier: "u1",
		Name:            "   ",
	})
	if err == nil {
		t.Fatal("expected error for blank name")
	}
}
