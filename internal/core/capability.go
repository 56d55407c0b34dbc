package core

// Capability is a single permission a session carries into core
// operations. Handlers receive a resolved CapabilitySet instead of
// re-deriving permissions from role strings at each call site.
type Capability string

const (
	CapViewLedger      Capability = "view_ledger"
	CapSubmitExpense   Capability = "submit_expense"
	CapDecideExpense   Capability = "decide_expense"
	CapManageResidents Capability = "manage_residents"
	CapManageSettings  Capability = "manage_settings"
)

// Role is the stored account role; it is resolved to capabilities once at
// session start.
type Role string

const (
	RoleAdmin    Role = "admin"    // community administrator
	RolePengurus Role = "pengurus" // committee member: records payments and expenses
	RoleWarga    Role = "warga"    // resident: read-only
)

// CapabilitySet is the set of capabilities resolved for a session.
type CapabilitySet map[Capability]struct{}

func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

var roleCapabilities = map[Role][]Capability{
	RoleAdmin: {
		CapViewLedger, CapSubmitExpense, CapDecideExpense,
		CapManageResidents, CapManageSettings,
	},
	RolePengurus: {CapViewLedger, CapSubmitExpense},
	RoleWarga:    {CapViewLedger},
}

// CapabilitiesFor resolves a role to its capability set. Unknown roles get
// an empty set rather than an error so a bad row cannot escalate.
func CapabilitiesFor(role Role) CapabilitySet {
	set := make(CapabilitySet)
	for _, c := range roleCapabilities[role] {
		set[c] = struct{}{}
	}
	return set
}
