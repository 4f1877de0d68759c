// Package memory is the map-backed store used when no database is
// configured. Stock mutation and the delete-time active-loan check are
// serialized with a mutex per book entry, so operations on different
// books never block each other.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"biblioteca/model"
	"biblioteca/repository"
)

type bookEntry struct {
	mu      sync.Mutex
	book    model.Book
	deleted bool
}

type Store struct {
	mu         sync.RWMutex // books map + id counter
	books      map[int64]*bookEntry
	nextBookID int64

	loanMu     sync.RWMutex // loans map + id counter
	loans      map[int64]*model.Loan
	nextLoanID int64
}

// Lock order: a bookEntry.mu may be held while taking loanMu or mu, never
// the other way around. Lookups release the map lock before locking the
// entry; a deleted flag on the entry covers the gap.

func New() *Store {
	return &Store{
		books: make(map[int64]*bookEntry),
		loans: make(map[int64]*model.Loan),
	}
}

func (s *Store) entry(id int64) *bookEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.books[id]
}

// ----- catalog side -----

func (s *Store) InsertBook(_ context.Context, title, author, isbn string, stock int64) (*model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextBookID++
	b := model.Book{
		ID:     s.nextBookID,
		Title:  title,
		Author: author,
		ISBN:   isbn,
		Stock:  stock,
		Status: model.BookActive,
	}
	s.books[b.ID] = &bookEntry{book: b}
	return &b, nil
}

func (s *Store) GetBook(_ context.Context, id int64) (*model.Book, error) {
	e := s.entry(id)
	if e == nil {
		return nil, repository.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, repository.ErrNotFound
	}
	b := e.book
	return &b, nil
}

func (s *Store) UpdateBook(_ context.Context, id int64, title, author, isbn string, stock int64) (*model.Book, error) {
	e := s.entry(id)
	if e == nil {
		return nil, repository.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, repository.ErrNotFound
	}
	if e.book.Status == model.BookDecommissioned {
		return nil, repository.ErrDecommissioned
	}
	e.book.Title = title
	e.book.Author = author
	e.book.ISBN = isbn
	e.book.Stock = stock
	b := e.book
	return &b, nil
}

func (s *Store) DeleteBook(_ context.Context, id int64) error {
	e := s.entry(id)
	if e == nil {
		return repository.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return repository.ErrNotFound
	}

	// Holding the entry lock blocks OpenLoan on this book, so the
	// active-loan check and the delete are one atomic step.
	s.loanMu.RLock()
	for _, l := range s.loans {
		if l.BookID == id && l.Status == model.LoanActive {
			s.loanMu.RUnlock()
			return repository.ErrActiveLoans
		}
	}
	s.loanMu.RUnlock()

	e.deleted = true
	s.mu.Lock()
	delete(s.books, id)
	s.mu.Unlock()
	return nil
}

func (s *Store) DecommissionBook(_ context.Context, id int64, reason string) error {
	e := s.entry(id)
	if e == nil {
		return repository.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return repository.ErrNotFound
	}
	if e.book.Status == model.BookDecommissioned {
		// Terminal state, repeating is a no-op.
		return nil
	}
	now := time.Now().UTC()
	e.book.Status = model.BookDecommissioned
	e.book.Stock = 0
	e.book.DecommissionedAt = &now
	if reason != "" {
		e.book.DecommissionReason = &reason
	}
	return nil
}

func (s *Store) ListBooks(_ context.Context) ([]model.Book, error) {
	s.mu.RLock()
	entries := make([]*bookEntry, 0, len(s.books))
	for _, e := range s.books {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]model.Book, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.deleted {
			out = append(out, e.book)
		}
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ----- ledger side -----

func (s *Store) OpenLoan(_ context.Context, bookID int64, studentName string) (*model.Loan, error) {
	e := s.entry(bookID)
	if e == nil {
		return nil, repository.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, repository.ErrNotFound
	}
	if e.book.Status == model.BookDecommissioned {
		return nil, repository.ErrDecommissioned
	}
	if e.book.Stock == 0 {
		return nil, repository.ErrNoStock
	}
	e.book.Stock--

	s.loanMu.Lock()
	s.nextLoanID++
	l := model.Loan{
		ID:          s.nextLoanID,
		BookID:      bookID,
		StudentName: studentName,
		LoanDate:    time.Now().UTC(),
		Status:      model.LoanActive,
	}
	s.loans[l.ID] = &l
	s.loanMu.Unlock()

	out := l
	return &out, nil
}

func (s *Store) CloseLoan(_ context.Context, id int64) (*model.Loan, error) {
	s.loanMu.RLock()
	l := s.loans[id]
	s.loanMu.RUnlock()
	if l == nil {
		return nil, repository.ErrNotFound
	}

	e := s.entry(l.BookID)
	if e != nil {
		e.mu.Lock()
		defer e.mu.Unlock()
	}

	s.loanMu.Lock()
	defer s.loanMu.Unlock()
	if l.Status == model.LoanReturned {
		return nil, repository.ErrAlreadyReturned
	}
	if e == nil || e.deleted {
		// An active loan pins its book, so the record must still exist.
		return nil, repository.ErrNotFound
	}
	now := time.Now().UTC()
	l.Status = model.LoanReturned
	l.ReturnDate = &now
	e.book.Stock++

	out := *l
	return &out, nil
}

func (s *Store) ListActiveLoans(_ context.Context) ([]model.ActiveLoanRow, error) {
	s.loanMu.RLock()
	active := make([]model.Loan, 0, len(s.loans))
	for _, l := range s.loans {
		if l.Status == model.LoanActive {
			active = append(active, *l)
		}
	}
	s.loanMu.RUnlock()
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })

	out := make([]model.ActiveLoanRow, 0, len(active))
	for _, l := range active {
		row := model.ActiveLoanRow{
			ID:          l.ID,
			BookID:      l.BookID,
			StudentName: l.StudentName,
			LoanDate:    l.LoanDate,
			Status:      l.Status,
		}
		if e := s.entry(l.BookID); e != nil {
			e.mu.Lock()
			row.BookTitle = e.book.Title
			e.mu.Unlock()
		}
		out = append(out, row)
	}
	return out, nil
}
