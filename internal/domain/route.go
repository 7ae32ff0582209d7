package domain

// Route is a navigation destination known to the access gate
type Route string

const (
	RouteHome       Route = "home"
	RouteDeposit    Route = "deposit"
	RouteDashboard  Route = "dashboard"
	RouteFAQ        Route = "faq"
	RouteAbout      Route = "about"
	RouteLiveMining Route = "live-mining"
	RouteDemoMining Route = "demo-mining"
	RouteNotFound   Route = "not-found"
)

// Known reports whether r is a route the gate understands. Unknown routes
// resolve to the not-found page, which is always reachable.
func (r Route) Known() bool {
	switch r {
	case RouteHome, RouteDeposit, RouteDashboard, RouteFAQ, RouteAbout,
		RouteLiveMining, RouteDemoMining, RouteNotFound:
		return true
	}
	return false
}

// Decision is the outcome of one gate evaluation. It carries no side effects;
// the caller navigates, redirects or shows the login surface accordingly.
type Decision struct {
	Permit      bool   `json:"permit"`
	RedirectTo  Route  `json:"redirect_to,omitempty"`
	PromptLogin bool   `json:"prompt_login"`
	Reason      string `json:"reason,omitempty"`
}
