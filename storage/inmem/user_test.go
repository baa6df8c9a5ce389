package inmemdb

import (
	"context"
	"testing"

	"github.com/himanshhhhuv/studentinfo/core"
	"github.com/himanshhhhuv/studentinfo/core/user"
)

func TestQueryUsersDescendingKeepsSecondaryOrder(t *testing.T) {
	db := NewDB()
	repo := NewUserRepository(db)
	ctx := context.Background()

	for _, usr := range []user.User{
		{FirstName: "Zoe", LastName: "Last", Email: "z@test.cd"},
		{FirstName: "Same", LastName: "One", Email: "a@test.cd"},
		{FirstName: "Same", LastName: "Two", Email: "b@test.cd"},
		{FirstName: "Same", LastName: "Three", Email: "c@test.cd"},
	} {
		if _, err := repo.CreateUser(ctx, usr); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}

	// sort by email first, then stable-sort by first name descending;
	// the first-name ties must keep their email ordering
	ordering := []core.Ordering{
		{Field: "first_name", Ascending: false},
		{Field: "email", Ascending: true},
	}
	users, err := repo.QueryUsers(ctx, nil, ordering)
	if err != nil {
		t.Fatalf("QueryUsers() failed: %v", err)
	}

	wantEmails := []string{"z@test.cd", "a@test.cd", "b@test.cd", "c@test.cd"}
	if len(users) != len(wantEmails) {
		t.Fatalf("len(users) = %v; want %v", len(users), len(wantEmails))
	}
	for i, want := range wantEmails {
		if users[i].Email != want {
			t.Errorf("users[%d].Email = %q; want %q", i, users[i].Email, want)
		}
	}
}
