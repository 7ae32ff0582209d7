package service

import (
	"github.com/bitminesocial/mining-service/internal/domain"
)

// Decide is the access gate: a pure decision over the current session, the
// deposit record and a requested destination. It has no side effects and is
// evaluated anew on every navigation attempt.
//
// Rules, in order:
//  1. Unknown destinations resolve to the not-found page.
//  2. Public destinations are always permitted.
//  3. dashboard and deposit require an authenticated session; otherwise the
//     caller must show the login surface instead of navigating.
func Decide(session domain.Session, dest domain.Route) domain.Decision {
	if !dest.Known() {
		return domain.Decision{Permit: true, RedirectTo: domain.RouteNotFound}
	}

	switch dest {
	case domain.RouteDashboard, domain.RouteDeposit:
		if session.IsHydrating || !session.IsAuthenticated {
			return domain.Decision{
				Permit:      false,
				RedirectTo:  domain.RouteHome,
				PromptLogin: true,
				Reason:      "authentication required",
			}
		}
		return domain.Decision{Permit: true}
	default:
		return domain.Decision{Permit: true}
	}
}

// DecideWithdraw gates the withdraw action. It never executes anything: an
// unauthenticated caller is sent to the login surface, an authenticated
// caller without a confirmed deposit is routed to the threshold explanation
// on the deposit page.
func DecideWithdraw(session domain.Session, deposit domain.DepositRecord) domain.Decision {
	if session.IsHydrating || !session.IsAuthenticated {
		return domain.Decision{
			Permit:      false,
			RedirectTo:  domain.RouteHome,
			PromptLogin: true,
			Reason:      "authentication required",
		}
	}

	if !deposit.Confirmed {
		return domain.Decision{
			Permit:     false,
			RedirectTo: domain.RouteDeposit,
			Reason:     "withdrawals require an active mining deposit",
		}
	}

	return domain.Decision{Permit: true}
}
