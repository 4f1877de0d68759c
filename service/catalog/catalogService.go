package catalogsvc

import (
	"context"
	"errors"
	"strings"

	"biblioteca/model"
	"biblioteca/repository"
	"biblioteca/util/fault"
)

type Book = model.Book

type Repo interface {
	InsertBook(ctx context.Context, title, author, isbn string, stock int64) (*Book, error)
	GetBook(ctx context.Context, id int64) (*Book, error)
	UpdateBook(ctx context.Context, id int64, title, author, isbn string, stock int64) (*Book, error)
	DeleteBook(ctx context.Context, id int64) error
	DecommissionBook(ctx context.Context, id int64, reason string) error
	ListBooks(ctx context.Context) ([]Book, error)
}

type Service interface {
	Create(ctx context.Context, title, author, isbn string, stock int64) (*Book, error)
	Get(ctx context.Context, id int64) (*Book, error)
	Update(ctx context.Context, id int64, title, author, isbn string, stock int64) (*Book, error)
	Delete(ctx context.Context, id int64) error

	// Decommission is terminal: stock drops to 0 and the book can no
	// longer be loaned or edited. Repeating it succeeds as a no-op.
	Decommission(ctx context.Context, id int64, reason string) (string, error)

	List(ctx context.Context) ([]Book, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func validate(title, author, isbn string, stock int64) error {
	if strings.TrimSpace(title) == "" {
		return fault.New(fault.Validation, "title is required")
	}
	if strings.TrimSpace(author) == "" {
		return fault.New(fault.Validation, "author is required")
	}
	if strings.TrimSpace(isbn) == "" {
		return fault.New(fault.Validation, "isbn is required")
	}
	if stock < 0 {
		return fault.New(fault.Validation, "stock must not be negative")
	}
	return nil
}

func (s *service) Create(ctx context.Context, title, author, isbn string, stock int64) (*Book, error) {
	if err := validate(title, author, isbn, stock); err != nil {
		return nil, err
	}
	b, err := s.r.InsertBook(ctx, strings.TrimSpace(title), strings.TrimSpace(author), strings.TrimSpace(isbn), stock)
	if err != nil {
		return nil, fault.Wrap(err, "could not create book")
	}
	return b, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Book, error) {
	b, err := s.r.GetBook(ctx, id)
	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, repository.ErrNotFound):
		return nil, fault.New(fault.NotFound, "book not found")
	default:
		return nil, fault.Wrap(err, "could not load book")
	}
}

func (s *service) Update(ctx context.Context, id int64, title, author, isbn string, stock int64) (*Book, error) {
	if err := validate(title, author, isbn, stock); err != nil {
		return nil, err
	}
	b, err := s.r.UpdateBook(ctx, id, strings.TrimSpace(title), strings.TrimSpace(author), strings.TrimSpace(isbn), stock)
	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, repository.ErrNotFound):
		return nil, fault.New(fault.NotFound, "book not found")
	case errors.Is(err, repository.ErrDecommissioned):
		return nil, fault.New(fault.Conflict, "book is decommissioned and cannot be edited")
	default:
		return nil, fault.Wrap(err, "could not update book")
	}
}

func (s *service) Delete(ctx context.Context, id int64) error {
	err := s.r.DeleteBook(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fault.New(fault.NotFound, "book not found")
	case errors.Is(err, repository.ErrActiveLoans):
		return fault.New(fault.Conflict, "active loans exist for this book")
	default:
		return fault.Wrap(err, "could not delete book")
	}
}

func (s *service) Decommission(ctx context.Context, id int64, reason string) (string, error) {
	err := s.r.DecommissionBook(ctx, id, strings.TrimSpace(reason))
	switch {
	case err == nil:
		return "book decommissioned", nil
	case errors.Is(err, repository.ErrNotFound):
		return "", fault.New(fault.NotFound, "book not found")
	default:
		return "", fault.Wrap(err, "could not decommission book")
	}
}

func (s *service) List(ctx context.Context) ([]Book, error) {
	out, err := s.r.ListBooks(ctx)
	if err != nil {
		return nil, fault.Wrap(err, "could not list books")
	}
	return out, nil
}
