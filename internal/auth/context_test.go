package auth

import (
	"context"
	"testing"

	"github.com/dukerupert/smartkitchen/internal/model"
)

func TestWithAuthAndFromContext(t *testing.T) {
	ac := AuthContext{
		UserID:    1,
		Name:      "Asha",
		Role:      model.RoleOwner,
		SessionID: 3,
	}

	ctx := WithAuth(context.Background(), ac)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected AuthContext in context")
	}
	if got.UserID != 1 {
		t.Errorf("UserID = %d, want 1", got.UserID)
	}
	if got.Name != "Asha" {
		t.Errorf("Name = %q, want %q", got.Name, "Asha")
	}
	if got.Role != model.RoleOwner {
		t.Errorf("Role = %q, want %q", got.Role, model.RoleOwner)
	}
	if got.SessionID != 3 {
		t.Errorf("SessionID = %d, want 3", got.SessionID)
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected false for missing AuthContext")
	}
}

func TestUserID(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{UserID: 7})
	if UserID(ctx) != 7 {
		t.Errorf("UserID = %d, want 7", UserID(ctx))
	}
	if UserID(context.Background()) != 0 {
		t.Error("expected 0 for missing context")
	}
}

func TestHasRole(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{Role: model.RoleSupplier})
	if !HasRole(ctx, model.RoleOwner, model.RoleSupplier) {
		t.Error("expected supplier to match")
	}
	if HasRole(ctx, model.RoleOwner) {
		t.Error("expected supplier not to match owner")
	}
	if HasRole(context.Background(), model.RoleCustomer) {
		t.Error("expected false for missing context")
	}
}
