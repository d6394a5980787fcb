package auth

import "github.com/atinyakov/canteen/internal/models"

// Authorize allows account iff its level is at least required.
// Undefined levels on either side are denied.
func Authorize(account models.Account, required models.PermissionLevel) error {
	if !required.Valid() || !account.PermissionLevel.Valid() {
		return ErrInsufficientPermission
	}
	if account.PermissionLevel < required {
		return ErrInsufficientPermission
	}
	return nil
}
