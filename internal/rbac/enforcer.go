package rbac

import (
	"github.com/sa99080/pharmacy-hub/internal/rank"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
)

// Resource/action pairs gated at the route level. Fine-grained checks (who
// may decide whose request) stay in the services against the rank table.
const (
	ResourceLeave    = "leave"
	ResourceApproval = "approval"
	ResourceEmployee = "employee"
	ResourceSchedule = "schedule"

	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDecide = "decide"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// NewEnforcer builds a casbin enforcer whose policy is derived from the rank
// policy table at startup. The rank table stays the single source of truth;
// nothing mutates the policy at runtime.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := casbinmodel.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, r := range rank.All {
		p := rank.PolicyFor(r)
		sub := string(r)

		// Every authenticated employee can view the merged schedule and
		// work with their own requests.
		if _, err := e.AddPolicies([][]string{
			{sub, ResourceSchedule, ActionRead},
			{sub, ResourceLeave, ActionRead},
			{sub, ResourceLeave, ActionWrite},
		}); err != nil {
			return nil, err
		}

		if len(p.ApprovableRanks) > 0 {
			if _, err := e.AddPolicies([][]string{
				{sub, ResourceApproval, ActionRead},
				{sub, ResourceApproval, ActionDecide},
			}); err != nil {
				return nil, err
			}
		}

		if p.ManagesEmployees {
			if _, err := e.AddPolicies([][]string{
				{sub, ResourceEmployee, ActionRead},
				{sub, ResourceEmployee, ActionWrite},
			}); err != nil {
				return nil, err
			}
		}
	}

	return e, nil
}
