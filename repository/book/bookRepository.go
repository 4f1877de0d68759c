package bookrepo

import (
	"context"
	"database/sql"
	"errors"

	"biblioteca/model"
	"biblioteca/repository"
)

type Repo interface {
	InsertBook(ctx context.Context, title, author, isbn string, stock int64) (*model.Book, error)
	GetBook(ctx context.Context, id int64) (*model.Book, error)
	UpdateBook(ctx context.Context, id int64, title, author, isbn string, stock int64) (*model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	DecommissionBook(ctx context.Context, id int64, reason string) error
	ListBooks(ctx context.Context) ([]model.Book, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const bookCols = `id, title, author, isbn, stock, status, decommission_reason, decommissioned_at`

func scanBook(row interface{ Scan(...any) error }) (*model.Book, error) {
	var b model.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Stock, &b.Status,
		&b.DecommissionReason, &b.DecommissionedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) InsertBook(ctx context.Context, title, author, isbn string, stock int64) (*model.Book, error) {
	const q = `
INSERT INTO books (title, author, isbn, stock, status)
VALUES ($1,$2,$3,$4,'ACTIVE')
RETURNING ` + bookCols
	return scanBook(r.db.QueryRowContext(ctx, q, title, author, isbn, stock))
}

func (r *repo) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE id=$1`
	b, err := scanBook(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return b, err
}

// lockStatus reads the book row FOR UPDATE so status checks and stock
// mutation serialize per book.
func lockStatus(ctx context.Context, tx *sql.Tx, id int64) (model.BookStatus, error) {
	const q = `SELECT status FROM books WHERE id=$1 FOR UPDATE`
	var st model.BookStatus
	err := tx.QueryRowContext(ctx, q, id).Scan(&st)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	return st, err
}

func (r *repo) UpdateBook(ctx context.Context, id int64, title, author, isbn string, stock int64) (_ *model.Book, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	st, err := lockStatus(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if st == model.BookDecommissioned {
		err = repository.ErrDecommissioned
		return nil, err
	}

	const q = `
UPDATE books
SET title=$2, author=$3, isbn=$4, stock=$5
WHERE id=$1
RETURNING ` + bookCols
	b, err := scanBook(tx.QueryRowContext(ctx, q, id, title, author, isbn, stock))
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) DeleteBook(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Locking the row first keeps a concurrent loan from slipping in
	// between the active-loan check and the delete.
	if _, err = lockStatus(ctx, tx, id); err != nil {
		return err
	}

	const chk = `SELECT EXISTS(SELECT 1 FROM loans WHERE book_id=$1 AND status='ACTIVE')`
	var active bool
	if err = tx.QueryRowContext(ctx, chk, id).Scan(&active); err != nil {
		return err
	}
	if active {
		err = repository.ErrActiveLoans
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM books WHERE id=$1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repo) DecommissionBook(ctx context.Context, id int64, reason string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	st, err := lockStatus(ctx, tx, id)
	if err != nil {
		return err
	}
	if st == model.BookDecommissioned {
		// Terminal state, repeating is a no-op.
		return tx.Commit()
	}

	const q = `
UPDATE books
SET status='DECOMMISSIONED', stock=0,
    decommission_reason=NULLIF($2,''), decommissioned_at=NOW()
WHERE id=$1`
	if _, err = tx.ExecContext(ctx, q, id, reason); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repo) ListBooks(ctx context.Context) ([]model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}
