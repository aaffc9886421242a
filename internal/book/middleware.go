package book

import (
	"log/slog"
	"net/http"

	internal "github.com/stonelib/library-management/internal"
	"github.com/stonelib/library-management/internal/transport"
)

// LoanGuard enforces the one-outstanding-loan rule on the loan and
// return routes before the handlers run.
type LoanGuard struct {
	*transport.BaseHandler
	Loans LoanRepository
}

func NewLoanGuard(loans LoanRepository, logger *slog.Logger) *LoanGuard {
	return &LoanGuard{
		BaseHandler: transport.NewBaseHandler(logger),
		Loans:       loans,
	}
}

// RequireNoOutstandingLoan rejects callers that still have books out.
func (g *LoanGuard) RequireNoOutstandingLoan(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := internal.PrincipalFromContext(r.Context())
		if !ok {
			g.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		outstanding, err := g.Loans.HasOutstanding(principal.ID)
		if err != nil {
			g.WriteAppError(w, internal.NewInternalError("could not check loans", err))
			return
		}
		if outstanding {
			g.WriteAppError(w, internal.ErrLoanOutstanding)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireOutstandingLoan rejects callers with nothing to return.
func (g *LoanGuard) RequireOutstandingLoan(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := internal.PrincipalFromContext(r.Context())
		if !ok {
			g.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		outstanding, err := g.Loans.HasOutstanding(principal.ID)
		if err != nil {
			g.WriteAppError(w, internal.NewInternalError("could not check loans", err))
			return
		}
		if !outstanding {
			g.WriteAppError(w, internal.ErrNoLoanOutstanding)
			return
		}

		next.ServeHTTP(w, r)
	})
}
