// Package models defines the core data structures for accounts, permission
// levels and the payloads exchanged with clients.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PermissionLevel is an ordered account tier. Comparisons are numeric:
// a higher level includes every right of the lower ones.
type PermissionLevel int

const (
	// PermissionUser is the default level for canteen customers.
	PermissionUser PermissionLevel = 0
	// PermissionWorker is held by canteen staff.
	PermissionWorker PermissionLevel = 1
	// PermissionAdmin manages accounts.
	PermissionAdmin PermissionLevel = 2
)

var permissionNames = map[PermissionLevel]string{
	PermissionUser:   "USER",
	PermissionWorker: "WORKER",
	PermissionAdmin:  "ADMIN",
}

// Valid reports whether l is one of the three defined tiers.
func (l PermissionLevel) Valid() bool {
	_, ok := permissionNames[l]
	return ok
}

func (l PermissionLevel) String() string {
	if name, ok := permissionNames[l]; ok {
		return name
	}
	return fmt.Sprintf("PermissionLevel(%d)", int(l))
}

// ParsePermissionLevel converts a tier name ("USER", "WORKER", "ADMIN")
// into a PermissionLevel.
func ParsePermissionLevel(s string) (PermissionLevel, error) {
	for level, name := range permissionNames {
		if name == s {
			return level, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown permission level %q", ErrInvalidAccount, s)
}

// MarshalJSON encodes the level by name.
func (l PermissionLevel) MarshalJSON() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: permission level %d", ErrInvalidAccount, int(l))
	}
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts only the three tier names.
func (l *PermissionLevel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("%w: permission level must be a string", ErrInvalidAccount)
	}
	level, err := ParsePermissionLevel(name)
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// Account is a persisted canteen identity.
type Account struct {
	// ID is the unique identifier for the account.
	ID string `json:"id"`
	// Username is the stable login name. It never changes once assigned.
	Username string `json:"username"`
	// Name is the personal display name.
	Name string `json:"name"`
	// PermissionLevel is the account's current tier.
	PermissionLevel PermissionLevel `json:"permission_level"`
	// Credit is the prepaid balance in cents.
	Credit int64 `json:"credit"`
	// PasswordHash is the argon2id PHC string. It never leaves the server.
	PasswordHash string `json:"-"`
	// CredentialsChangedAt is the last time the password was set.
	// Sessions issued before it are no longer honoured.
	CredentialsChangedAt time.Time `json:"-"`
}

// NewAccount is the administrative request to create an account.
type NewAccount struct {
	Username        string          `json:"username"`
	Name            string          `json:"name"`
	Password        string          `json:"password"`
	PermissionLevel PermissionLevel `json:"permission_level"`
}

// PasswordChangeRequest is sent by an account to change its own password.
type PasswordChangeRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// NameChangeRequest sets the display name of another account.
type NameChangeRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

// PasswordSetRequest sets the password of another account.
type PasswordSetRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PermissionChangeRequest sets the tier of another account.
type PermissionChangeRequest struct {
	Username        string          `json:"username"`
	PermissionLevel PermissionLevel `json:"permission_level"`
}

// AddCreditRequest adds (or, with a negative amount, removes) prepaid credit.
type AddCreditRequest struct {
	Username string `json:"username"`
	Amount   int64  `json:"amount"`
}
