package store

import (
	"testing"

	"github.com/dukerupert/smartkitchen/internal/model"
)

func TestPushSubscriptionUpsert(t *testing.T) {
	db := setupTestDB(t)
	ps := NewPushStore(db)
	u := createTestUser(t, db, "c@example.com", model.RoleCustomer)

	first, err := ps.CreateSubscription(u.ID, "https://push.example.com/abc", "p1", "a1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := ps.CreateSubscription(u.ID, "https://push.example.com/abc", "p2", "a2")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("id = %d, want %d", second.ID, first.ID)
	}
	if second.P256dhKey != "p2" {
		t.Errorf("p256dh = %q, want p2", second.P256dhKey)
	}

	if err := ps.DeleteByEndpoint("https://push.example.com/abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	subs, _ := ps.ListByUser(u.ID)
	if len(subs) != 0 {
		t.Errorf("subs = %d, want 0", len(subs))
	}
}
