package opfactory

import "strings"

// Role is the canonical semantic tag of a tensor bound to an operator,
// independent of the raw name used in the model file.
type Role int

// Canonical roles.
const (
	RoleNone Role = iota
	RoleOrigin
	RoleFilter
	RoleCounter
	RoleAppender
	RoleOut
	RoleScale
	RoleBias
	RoleMean
	RoleVariance
	RoleWeight
)

var roleNames = [...]string{
	RoleNone:     "",
	RoleOrigin:   "origin",
	RoleFilter:   "filter",
	RoleCounter:  "counter",
	RoleAppender: "appender",
	RoleOut:      "out",
	RoleScale:    "scale",
	RoleBias:     "bias",
	RoleMean:     "mean",
	RoleVariance: "variance",
	RoleWeight:   "weight",
}

// String returns the canonical role name used to suffix shader parameters.
func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return "unknown"
	}
	return roleNames[r]
}

// rawRoles is the fixed dictionary from lower-cased raw names to roles.
var rawRoles = map[string]Role{
	"input":    RoleOrigin,
	"x":        RoleOrigin,
	"filter":   RoleFilter,
	"y":        RoleCounter,
	"z":        RoleAppender,
	"output":   RoleOut,
	"out":      RoleOut,
	"scale":    RoleScale,
	"bias":     RoleBias,
	"mean":     RoleMean,
	"variance": RoleVariance,
	"w":        RoleWeight,
}

// RoleFor maps a raw input/output name to its role. Matching is case-insensitive.
// Names outside the dictionary return RoleNone and false.
func RoleFor(rawName string) (Role, bool) {
	r, ok := rawRoles[strings.ToLower(rawName)]
	return r, ok
}
