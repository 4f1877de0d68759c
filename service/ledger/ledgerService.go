package ledgersvc

import (
	"context"
	"errors"
	"strings"

	"biblioteca/model"
	"biblioteca/repository"
	"biblioteca/util/fault"
)

type Loan = model.Loan
type ActiveLoanRow = model.ActiveLoanRow

type Repo interface {
	OpenLoan(ctx context.Context, bookID int64, studentName string) (*Loan, error)
	CloseLoan(ctx context.Context, id int64) (*Loan, error)
	ListActiveLoans(ctx context.Context) ([]ActiveLoanRow, error)
}

type Service interface {
	// Create opens a loan against the book's stock. One unit moves from
	// stock onto the loan, atomically per book.
	Create(ctx context.Context, bookID int64, studentName string) (*Loan, error)

	// Return closes an active loan and restores one unit of stock. A
	// loan returns exactly once.
	Return(ctx context.Context, id int64) (*Loan, error)

	ListActive(ctx context.Context) ([]ActiveLoanRow, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, bookID int64, studentName string) (*Loan, error) {
	if bookID <= 0 {
		return nil, fault.New(fault.Validation, "bookId is required")
	}
	if strings.TrimSpace(studentName) == "" {
		return nil, fault.New(fault.Validation, "studentName is required")
	}
	l, err := s.r.OpenLoan(ctx, bookID, strings.TrimSpace(studentName))
	switch {
	case err == nil:
		return l, nil
	case errors.Is(err, repository.ErrNotFound):
		return nil, fault.New(fault.NotFound, "book not found")
	case errors.Is(err, repository.ErrNoStock):
		return nil, fault.New(fault.Conflict, "no stock available for this book")
	case errors.Is(err, repository.ErrDecommissioned):
		return nil, fault.New(fault.Conflict, "book is decommissioned")
	default:
		return nil, fault.Wrap(err, "could not create loan")
	}
}

func (s *service) Return(ctx context.Context, id int64) (*Loan, error) {
	l, err := s.r.CloseLoan(ctx, id)
	switch {
	case err == nil:
		return l, nil
	case errors.Is(err, repository.ErrNotFound):
		return nil, fault.New(fault.NotFound, "loan not found")
	case errors.Is(err, repository.ErrAlreadyReturned):
		return nil, fault.New(fault.Conflict, "loan already returned")
	default:
		return nil, fault.Wrap(err, "could not return loan")
	}
}

func (s *service) ListActive(ctx context.Context) ([]ActiveLoanRow, error) {
	out, err := s.r.ListActiveLoans(ctx)
	if err != nil {
		return nil, fault.Wrap(err, "could not list loans")
	}
	return out, nil
}
