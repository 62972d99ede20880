package auth

// Role codes issued by the billing API. Closed set; extend here and in
// the API together.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RoleAgent      = "AGENT"
)

// Feature identifiers granted through Profile.AllowedFeatures. These
// gate console navigation only; the API is the authority on every call.
const (
	PermCustomerView   = "customer.view.one"
	PermCollectionView = "collection.view"
	PermPaymentsView   = "payments.view"
	PermReportsView    = "reports.view"
	PermPlanManage     = "plan.manage"
	PermAgentManage    = "agent.manage"
	PermCompanyManage  = "company.manage"
)

// Profile is the operator identity the billing API returns on login and
// impersonation. CompanyID is nil for super admins, who are unscoped.
// ImpersonatedBy is set only while an admin is acting as an agent and
// points back at the admin identity used to revert.
type Profile struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Phone           string   `json:"phone"`
	Role            string   `json:"role"`
	RoleCode        string   `json:"roleCode"`
	AllowedFeatures []string `json:"allowedFeatures"`
	CompanyID       *string  `json:"companyId,omitempty"`
	ImpersonatedBy  *Profile `json:"impersonatedBy,omitempty"`
}

// IsImpersonating reports whether this session was created by an admin
// stepping into an agent identity.
func (p *Profile) IsImpersonating() bool {
	return p != nil && p.ImpersonatedBy != nil
}
