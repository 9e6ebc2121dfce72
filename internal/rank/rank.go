package rank

// Rank is an employee's position tier. It doubles as the authorization-scope
// key for approval decisions.
type Rank string

const (
	Director            Rank = "DIRECTOR"
	DeputyDirector      Rank = "DEPUTY_DIRECTOR"
	DispensaryManager   Rank = "DISPENSARY_MANAGER"
	SystemsManager      Rank = "SYSTEMS_MANAGER"
	Pharmacist          Rank = "PHARMACIST"
	DispensaryAssistant Rank = "DISPENSARY_ASSISTANT"
	SystemsAssistant    Rank = "SYSTEMS_ASSISTANT"
)

// All lists every rank in roster order.
var All = []Rank{
	Director,
	DeputyDirector,
	DispensaryManager,
	SystemsManager,
	Pharmacist,
	DispensaryAssistant,
	SystemsAssistant,
}

// Policy collects every rank-conditioned capability in one place so call
// sites query the policy instead of comparing rank strings.
type Policy struct {
	Rank Rank

	// Order sorts rosters; lower comes first. Ranks can share an order.
	Order int

	// AutoApproved submissions skip the pending step entirely.
	AutoApproved bool

	// ShowsBalance is false for ranks that operate on an uncapped
	// travel-schedule model and see no balance panel.
	ShowsBalance bool

	// ManagesEmployees gates the roster create/update/delete surface.
	ManagesEmployees bool

	// OverseasAllowed gates the OVERSEAS leave kind.
	OverseasAllowed bool

	// ApprovableRanks is the hand-maintained set of ranks whose requests
	// this rank may view and decide. Not a transitive closure.
	ApprovableRanks []Rank
}

var policies = map[Rank]Policy{
	Director: {
		Rank:             Director,
		Order:            1,
		AutoApproved:     true,
		ShowsBalance:     false,
		ManagesEmployees: true,
		OverseasAllowed:  true,
		ApprovableRanks: []Rank{
			DeputyDirector,
			DispensaryManager,
			SystemsManager,
			Pharmacist,
			DispensaryAssistant,
			SystemsAssistant,
		},
	},
	DeputyDirector: {
		Rank:             DeputyDirector,
		Order:            2,
		AutoApproved:     true,
		ShowsBalance:     false,
		ManagesEmployees: true,
		OverseasAllowed:  true,
		// The two top-tier ranks approve each other so administration is
		// shared rather than funneled through a single person.
		ApprovableRanks: []Rank{
			Director,
			DispensaryManager,
			SystemsManager,
			Pharmacist,
			DispensaryAssistant,
			SystemsAssistant,
		},
	},
	DispensaryManager: {
		Rank:            DispensaryManager,
		Order:           3,
		ShowsBalance:    true,
		ApprovableRanks: []Rank{DispensaryAssistant},
	},
	SystemsManager: {
		Rank:            SystemsManager,
		Order:           3,
		ShowsBalance:    true,
		ApprovableRanks: []Rank{SystemsAssistant},
	},
	Pharmacist: {
		Rank:         Pharmacist,
		Order:        4,
		ShowsBalance: true,
	},
	DispensaryAssistant: {
		Rank:         DispensaryAssistant,
		Order:        5,
		ShowsBalance: true,
	},
	SystemsAssistant: {
		Rank:         SystemsAssistant,
		Order:        5,
		ShowsBalance: true,
	},
}

// Valid reports whether s names a known rank.
func Valid(s string) bool {
	_, ok := policies[Rank(s)]
	return ok
}

// PolicyFor resolves the policy for a rank. Unknown ranks resolve to a zero
// policy with no capabilities, never an error.
func PolicyFor(r Rank) Policy {
	if p, ok := policies[r]; ok {
		return p
	}
	return Policy{Rank: r, Order: 99, ShowsBalance: true}
}

// ApprovableRanks returns the set of ranks r may approve. Ranks without an
// entry get an empty set.
func ApprovableRanks(r Rank) []Rank {
	p := PolicyFor(r)
	out := make([]Rank, len(p.ApprovableRanks))
	copy(out, p.ApprovableRanks)
	return out
}

// CanApprove reports whether actor may decide requests owned by target.
func CanApprove(actor, target Rank) bool {
	for _, r := range PolicyFor(actor).ApprovableRanks {
		if r == target {
			return true
		}
	}
	return false
}
