package stats

import (
	"fmt"
	"strings"
)

// Role is a fixed roster position. Role order is column order.
type Role int

const (
	Top Role = iota
	Jungle
	Mid
	ADC
	Support

	NumRoles
)

var roleNames = [NumRoles]string{"top", "jungle", "mid", "adc", "support"}

func (r Role) String() string {
	if r < 0 || r >= NumRoles {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleNames[r]
}

// ParseRole looks up a role by name, case-insensitively
func ParseRole(name string) (Role, error) {
	for r := Role(0); r < NumRoles; r++ {
		if strings.EqualFold(roleNames[r], name) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", name)
}

// Roster holds the tracked player name for every role
type Roster [NumRoles]string

// Validate checks that every slot is filled and no player is tracked twice
func (r Roster) Validate() error {
	seen := map[string]Role{}
	for role, name := range r {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("no player set for %s", Role(role))
		}
		if other, ok := seen[name]; ok {
			return fmt.Errorf("player %q is set for both %s and %s", name, other, Role(role))
		}
		seen[name] = Role(role)
	}
	return nil
}

// match finds the slot whose name equals one of the candidates exactly
func (r Roster) match(candidates []string) (string, Role, bool) {
	for role, name := range r {
		for _, c := range candidates {
			if c == name {
				return name, Role(role), true
			}
		}
	}
	return "", 0, false
}
