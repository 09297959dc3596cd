package models

// Role is the closed set of user roles.
type Role string

const (
	RoleSuperUser   Role = "super_user"
	RoleOwner       Role = "owner"
	RoleAccountant  Role = "accountant"
	RoleMorningUser Role = "morning_user"
	RoleEveningUser Role = "evening_user"
	RoleNightUser   Role = "night_user"
)

// Roles lists every valid role.
var Roles = []Role{RoleSuperUser, RoleOwner, RoleAccountant, RoleMorningUser, RoleEveningUser, RoleNightUser}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// IsShiftRole reports whether r is bound to a single shift type.
func (r Role) IsShiftRole() bool {
	_, ok := r.ShiftType()
	return ok
}

// ShiftType returns the shift a shift role is bound to.
func (r Role) ShiftType() (ShiftType, bool) {
	switch r {
	case RoleMorningUser:
		return ShiftMorning, true
	case RoleEveningUser:
		return ShiftEvening, true
	case RoleNightUser:
		return ShiftNight, true
	}
	return "", false
}

// ShiftType is one of the three named shifts. It is a domain constant, not a table.
type ShiftType string

const (
	ShiftMorning ShiftType = "morning"
	ShiftEvening ShiftType = "evening"
	ShiftNight   ShiftType = "night"
)

// ShiftTypes lists every shift type in day order.
var ShiftTypes = []ShiftType{ShiftMorning, ShiftEvening, ShiftNight}

// Valid reports whether s is a known shift type.
func (s ShiftType) Valid() bool {
	switch s {
	case ShiftMorning, ShiftEvening, ShiftNight:
		return true
	}
	return false
}
