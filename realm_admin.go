package keyrealm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/keyrealm/keyrealm/policy"
)

// AddUser registers a credential record for username. The password is
// stored only in its salted keyed-hash form. Administrative: expected
// during setup, not under authentication traffic.
func (r *Realm) AddUser(ctx context.Context, username, pass string) error {
	if username == "" {
		return errors.New("empty username")
	}

	record, err := r.hasher.HashRecord(pass)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; ok {
		return fmt.Errorf("%w: %q", ErrUserExists, username)
	}

	r.users[username] = &userRecord{
		username: username,
		record:   record,
		roles:    policy.NewRoleSet(),
	}

	r.emitAudit(ctx, EventUserRegistered, username, "", "", true, nil)
	return nil
}

// AssignRole adds a role membership to username's record. Principals minted
// by later Verify calls carry the updated set; already-issued principals
// keep their issuance-time snapshot.
func (r *Realm) AssignRole(username string, id policy.RoleID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.users[username]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUserNotFound, username)
	}

	rec.roles.Add(id)
	return nil
}

// AddApplication registers an OAuth client record. An empty ClientID is
// filled with a generated UUID. Returns the stored record.
func (r *Realm) AddApplication(ctx context.Context, app Application) (Application, error) {
	if app.ClientID == "" {
		app.ClientID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.apps[app.ClientID]; ok {
		return Application{}, fmt.Errorf("%w: %q", ErrApplicationExists, app.ClientID)
	}

	r.apps[app.ClientID] = app

	r.logger.Info("application registered", zap.String("client_id", app.ClientID))
	r.emitAudit(ctx, EventApplicationRegistered, "", app.ClientID, "", true, nil)
	return app, nil
}

// FindApplication resolves clientID to its registered record. Unknown ids
// are a genuine fault (misconfiguration or a forged client) and surface as
// [ErrUnknownApplication] rather than a silent default.
func (r *Realm) FindApplication(clientID string) (Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	app, ok := r.apps[clientID]
	if !ok {
		return Application{}, fmt.Errorf("%w: %q", ErrUnknownApplication, clientID)
	}
	return app, nil
}

// Users returns the number of registered credential records.
func (r *Realm) Users() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// ActiveTokens returns the number of live token bindings.
func (r *Realm) ActiveTokens() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}
