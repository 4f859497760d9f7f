package keyrealm

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/keyrealm/keyrealm/policy"
)

// Exercises the token table under parallel issuance, lookup, and
// revocation. Run with -race.
func TestRealmConcurrentTokenTraffic(t *testing.T) {
	realm := newTestRealm(t, fastTestConfig())
	ctx := context.Background()

	const users = 8

	for i := 0; i < users; i++ {
		username := fmt.Sprintf("user-%d", i)
		if err := realm.AddUser(ctx, username, "secret-password"); err != nil {
			t.Fatalf("AddUser failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, users)

	for i := 0; i < users; i++ {
		username := fmt.Sprintf("user-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()

			principal, err := realm.Verify(ctx, username, "secret-password")
			if err != nil {
				errs <- fmt.Errorf("%s: verify: %w", username, err)
				return
			}
			if principal == nil {
				errs <- fmt.Errorf("%s: rejected", username)
				return
			}

			for j := 0; j < 20; j++ {
				resolved, _ := realm.Authenticate(principal.token)
				if resolved == nil {
					errs <- fmt.Errorf("%s: live token failed to resolve", username)
					return
				}
			}

			realm.Revoke(ctx, principal)
			if resolved, _ := realm.Authenticate(principal.token); resolved != nil {
				errs <- fmt.Errorf("%s: revoked token resolved", username)
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	if realm.ActiveTokens() != 0 {
		t.Fatalf("expected empty token table, got %d entries", realm.ActiveTokens())
	}
}

// Role assignment mutates the same bitmap Verify snapshots into the issued
// principal. Run with -race.
func TestVerifyConcurrentWithAssignRole(t *testing.T) {
	realm := newTestRealm(t, fastTestConfig())
	ctx := context.Background()

	if err := realm.AddUser(ctx, "alice", "secret-password"); err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}

	const logins = 20

	var wg sync.WaitGroup
	errs := make(chan error, logins)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for id := policy.RoleID(1); id <= 200; id++ {
			if err := realm.AssignRole("alice", id); err != nil {
				errs <- fmt.Errorf("AssignRole(%d): %w", id, err)
				return
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < logins; i++ {
			principal, err := realm.Verify(ctx, "alice", "secret-password")
			if err != nil {
				errs <- fmt.Errorf("Verify: %w", err)
				return
			}
			if principal == nil {
				errs <- fmt.Errorf("login %d rejected", i)
				return
			}
			// The snapshot must be a coherent prefix of the assignments:
			// role n present implies every lower role is present too.
			highest := policy.RoleID(0)
			for id := policy.RoleID(200); id >= 1; id-- {
				if principal.HasRole(id) {
					highest = id
					break
				}
			}
			for id := policy.RoleID(1); id < highest; id++ {
				if !principal.HasRole(id) {
					errs <- fmt.Errorf("login %d: role %d missing below %d", i, id, highest)
					return
				}
			}
			realm.Revoke(ctx, principal)
		}
	}()

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
