package models

import "strings"

type Role string

const (
	RoleNone   Role = ""
	RoleMember Role = "member"
	RoleMod    Role = "mod"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// ParseRole accepts "", "none" and "null" as no role.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "null":
		return RoleNone, true
	case "member":
		return RoleMember, true
	case "mod":
		return RoleMod, true
	case "admin":
		return RoleAdmin, true
	case "owner":
		return RoleOwner, true
	}
	return RoleNone, false
}

func (r Role) rank() int {
	switch r {
	case RoleMember:
		return 1
	case RoleMod:
		return 2
	case RoleAdmin:
		return 3
	case RoleOwner:
		return 4
	}
	return 0
}

func (r Role) CanAccessAdmin() bool {
	return r.rank() >= RoleMod.rank()
}

func (r Role) CanAdjustEconomy() bool {
	return r == RoleAdmin || r == RoleOwner
}

func (r Role) CanReadLogs() bool {
	return r == RoleAdmin || r == RoleOwner
}

// CanModify reports whether r may act on an account holding target.
// Owners act on anyone, admins on mods and below, mods on members and below.
func (r Role) CanModify(target Role) bool {
	switch r {
	case RoleOwner:
		return true
	case RoleAdmin:
		return target.rank() <= RoleMod.rank()
	case RoleMod:
		return target.rank() <= RoleMember.rank()
	}
	return false
}

func (r Role) CanMute(target Role) bool {
	return r.CanAccessAdmin() && r.CanModify(target)
}

// CanAssignRole reports whether r may move an account from current to next.
func (r Role) CanAssignRole(current, next Role) bool {
	if !r.CanAccessAdmin() || !r.CanModify(current) {
		return false
	}
	switch r {
	case RoleOwner:
		return true
	case RoleAdmin:
		return next != RoleOwner
	case RoleMod:
		return next.rank() <= RoleMod.rank()
	}
	return false
}
