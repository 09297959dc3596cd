// Package access is the single role × operation policy. Every mutating
// service call consults it; screens never re-derive these rules.
package access

import (
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/models"
)

// Actor is the authenticated user an operation is performed for.
type Actor struct {
	UserID string
	Role   models.Role
	Shift  *models.ShiftType
}

// ActorOf builds an Actor from a stored user.
func ActorOf(u *models.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role, Shift: u.Shift}
}

// Affinity returns the shift type a shift-role actor is bound to. Non-shift
// roles have none.
func (a Actor) Affinity() (models.ShiftType, bool) {
	if !a.Role.IsShiftRole() {
		return "", false
	}
	if a.Shift != nil {
		return *a.Shift, true
	}
	return a.Role.ShiftType()
}

// Operation is a role-gated capability that does not depend on a shift.
type Operation string

const (
	DeleteTransaction    Operation = "delete_transaction"
	ManagePersonal       Operation = "manage_personal"
	ManageVendorPayments Operation = "manage_vendor_payments"
	ManageUsers          Operation = "manage_users"
	ManageMasterData     Operation = "manage_master_data"
	ViewReports          Operation = "view_reports"
	ViewShiftReports     Operation = "view_shift_reports"
)

var (
	ownerTier   = []models.Role{models.RoleSuperUser, models.RoleOwner}
	officeRoles = []models.Role{models.RoleSuperUser, models.RoleOwner, models.RoleAccountant}
)

var policy = map[Operation][]models.Role{
	DeleteTransaction:    ownerTier,
	ManagePersonal:       ownerTier,
	ManageVendorPayments: officeRoles,
	ManageUsers:          {models.RoleSuperUser},
	ManageMasterData:     officeRoles,
	ViewReports:          officeRoles,
	ViewShiftReports:     models.Roles,
}

var messages = map[Operation]string{
	DeleteTransaction:    "Permission denied: only Owner or Super User can delete.",
	ManagePersonal:       "Permission denied: only Owner or Super User can manage the personal ledger.",
	ManageVendorPayments: "Permission denied: only Owner, Accountant or Super User can manage vendor payments.",
	ManageUsers:          "Permission denied: only Super User can manage users.",
	ManageMasterData:     "Permission denied: only Owner, Accountant or Super User can manage master data.",
	ViewReports:          "Permission denied: reports are not available for shift users.",
	ViewShiftReports:     "Permission denied.",
}

// Can reports whether the actor's role grants op.
func Can(a Actor, op Operation) bool {
	for _, r := range policy[op] {
		if a.Role == r {
			return true
		}
	}
	return false
}

// Require returns PermissionDenied unless the actor's role grants op.
func Require(a Actor, op Operation) error {
	if Can(a, op) {
		return nil
	}
	msg, ok := messages[op]
	if !ok {
		msg = apperrors.ErrPermissionDenied.Message
	}
	return apperrors.WithMessage(apperrors.ErrPermissionDenied, msg)
}

// CanEdit reports whether the actor may edit a transaction that belongs to a
// shift of the given type. Super User and Accountant may edit any shift; a
// shift-role user only their own. Owner is not an editor.
func CanEdit(a Actor, shift models.ShiftType) bool {
	switch a.Role {
	case models.RoleSuperUser, models.RoleAccountant:
		return true
	}
	affinity, ok := a.Affinity()
	return ok && affinity == shift
}

// RequireEdit is CanEdit as an error.
func RequireEdit(a Actor, shift models.ShiftType) error {
	if CanEdit(a, shift) {
		return nil
	}
	return apperrors.Denied("Permission denied: you cannot edit %s shift data.", shift)
}

// CanTransact reports whether the actor may record transactions against an
// open shift of the given type. Shift-role users are limited to their own
// shift type; everyone else may pick any open shift.
func CanTransact(a Actor, shift models.ShiftType) bool {
	if !a.Role.Valid() {
		return false
	}
	affinity, ok := a.Affinity()
	if !ok {
		return true
	}
	return affinity == shift
}

// RequireTransact is CanTransact as an error.
func RequireTransact(a Actor, shift models.ShiftType) error {
	if CanTransact(a, shift) {
		return nil
	}
	return apperrors.Denied("Permission denied: you can only work on the %s shift.", shiftOf(a))
}

// VisibleShiftTypes returns the shift types whose data the actor may see in
// shift-scoped reports, or nil when every type is visible.
func VisibleShiftTypes(a Actor) []models.ShiftType {
	if affinity, ok := a.Affinity(); ok {
		return []models.ShiftType{affinity}
	}
	return nil
}

func shiftOf(a Actor) string {
	if affinity, ok := a.Affinity(); ok {
		return string(affinity)
	}
	return "assigned"
}
