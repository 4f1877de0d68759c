package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"biblioteca/model"
	"biblioteca/repository"

	"github.com/stretchr/testify/require"
)

func mustBook(t *testing.T, s *Store, title string, stock int64) *model.Book {
	t.Helper()
	b, err := s.InsertBook(context.Background(), title, "Herrera", "123", stock)
	require.NoError(t, err)
	return b
}

func TestOpenLoan_MovesStockOntoLoan(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := mustBook(t, s, "Dune", 1)

	l, err := s.OpenLoan(ctx, b.ID, "Ana")
	require.NoError(t, err)
	require.Equal(t, model.LoanActive, l.Status)
	require.Equal(t, b.ID, l.BookID)
	require.False(t, l.LoanDate.IsZero())

	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), got.Stock)
}

func TestOpenLoan_NoStock(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := mustBook(t, s, "Dune", 0)

	_, err := s.OpenLoan(ctx, b.ID, "Ana")
	require.ErrorIs(t, err, repository.ErrNoStock)

	// failed loan must not mutate anything
	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), got.Stock)
	rows, err := s.ListActiveLoans(ctx)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestOpenLoan_UnknownBook(t *testing.T) {
	s := New()
	_, err := s.OpenLoan(context.Background(), 99, "Ana")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCloseLoan_RestoresStockExactlyOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := mustBook(t, s, "Dune", 1)
	l, err := s.OpenLoan(ctx, b.ID, "Ana")
	require.NoError(t, err)

	closed, err := s.CloseLoan(ctx, l.ID)
	require.NoError(t, err)
	require.Equal(t, model.LoanReturned, closed.Status)
	require.NotNil(t, closed.ReturnDate)

	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Stock)

	// returning again must fail and leave stock alone
	_, err = s.CloseLoan(ctx, l.ID)
	require.ErrorIs(t, err, repository.ErrAlreadyReturned)
	got, err = s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Stock)
}

func TestDeleteBook_BlockedByActiveLoans(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := mustBook(t, s, "Dune", 2)

	l1, err := s.OpenLoan(ctx, b.ID, "Ana")
	require.NoError(t, err)
	l2, err := s.OpenLoan(ctx, b.ID, "Luis")
	require.NoError(t, err)

	require.ErrorIs(t, s.DeleteBook(ctx, b.ID), repository.ErrActiveLoans)

	_, err = s.CloseLoan(ctx, l1.ID)
	require.NoError(t, err)
	require.ErrorIs(t, s.DeleteBook(ctx, b.ID), repository.ErrActiveLoans)

	_, err = s.CloseLoan(ctx, l2.ID)
	require.NoError(t, err)
	require.NoError(t, s.DeleteBook(ctx, b.ID))

	_, err = s.GetBook(ctx, b.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDecommission_TerminalAndIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := mustBook(t, s, "Dune", 3)

	require.NoError(t, s.DecommissionBook(ctx, b.ID, "water damage"))

	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, model.BookDecommissioned, got.Status)
	require.Equal(t, int64(0), got.Stock)
	require.NotNil(t, got.DecommissionReason)
	require.Equal(t, "water damage", *got.DecommissionReason)

	// repeating is a no-op success
	require.NoError(t, s.DecommissionBook(ctx, b.ID, "other reason"))
	got, err = s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, "water damage", *got.DecommissionReason)

	// no further loans or edits
	_, err = s.OpenLoan(ctx, b.ID, "Ana")
	require.ErrorIs(t, err, repository.ErrDecommissioned)
	_, err = s.UpdateBook(ctx, b.ID, "Dune", "Herrera", "123", 5)
	require.ErrorIs(t, err, repository.ErrDecommissioned)
}

func TestReturnAfterDecommission_StillRestoresStock(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := mustBook(t, s, "Dune", 1)
	l, err := s.OpenLoan(ctx, b.ID, "Ana")
	require.NoError(t, err)

	require.NoError(t, s.DecommissionBook(ctx, b.ID, ""))

	_, err = s.CloseLoan(ctx, l.ID)
	require.NoError(t, err)
	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Stock)
}

func TestListActiveLoans_JoinsBookTitle(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := mustBook(t, s, "Dune", 2)
	l, err := s.OpenLoan(ctx, b.ID, "Ana")
	require.NoError(t, err)

	rows, err := s.ListActiveLoans(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, l.ID, rows[0].ID)
	require.Equal(t, "Dune", rows[0].BookTitle)
	require.Equal(t, "Ana", rows[0].StudentName)

	_, err = s.CloseLoan(ctx, l.ID)
	require.NoError(t, err)
	rows, err = s.ListActiveLoans(ctx)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestStockConservation(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := mustBook(t, s, "Dune", 5)

	activePlusStock := func() int64 {
		got, err := s.GetBook(ctx, b.ID)
		require.NoError(t, err)
		rows, err := s.ListActiveLoans(ctx)
		require.NoError(t, err)
		return got.Stock + int64(len(rows))
	}

	var loans []int64
	for i := 0; i < 3; i++ {
		l, err := s.OpenLoan(ctx, b.ID, "Ana")
		require.NoError(t, err)
		loans = append(loans, l.ID)
		require.Equal(t, int64(5), activePlusStock())
	}
	for _, id := range loans {
		_, err := s.CloseLoan(ctx, id)
		require.NoError(t, err)
		require.Equal(t, int64(5), activePlusStock())
	}
}

func TestConcurrentLoans_LastCopyWinsOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := mustBook(t, s, "Dune", 1)

	const n = 64
	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok, conflict int

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := s.OpenLoan(ctx, b.ID, "Ana")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, repository.ErrNoStock):
				conflict++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, ok)
	require.Equal(t, n-1, conflict)

	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), got.Stock)
}

func TestConcurrentDeleteAndLoan_NeverBothSucceed(t *testing.T) {
	ctx := context.Background()

	// Either the delete wins and the loan sees no book, or the loan wins
	// and the delete sees an active loan. Run many rounds to shake out
	// interleavings under the race detector.
	for round := 0; round < 100; round++ {
		s := New()
		b := mustBook(t, s, "Dune", 1)

		var wg sync.WaitGroup
		var loanErr, delErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, loanErr = s.OpenLoan(ctx, b.ID, "Ana")
		}()
		go func() {
			defer wg.Done()
			delErr = s.DeleteBook(ctx, b.ID)
		}()
		wg.Wait()

		if loanErr == nil && delErr == nil {
			t.Fatal("loan and delete both succeeded")
		}
	}
}

func TestConcurrentReturns_SingleLoanReturnsOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := mustBook(t, s, "Dune", 1)
	l, err := s.OpenLoan(ctx, b.ID, "Ana")
	require.NoError(t, err)

	const n = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok int
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := s.CloseLoan(ctx, l.ID); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, ok)
	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Stock)
}
