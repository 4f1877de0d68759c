package loanrepo

import (
	"context"
	"database/sql"
	"errors"

	"biblioteca/model"
	"biblioteca/repository"
)

type Repo interface {
	OpenLoan(ctx context.Context, bookID int64, studentName string) (*model.Loan, error)
	CloseLoan(ctx context.Context, id int64) (*model.Loan, error)
	ListActiveLoans(ctx context.Context) ([]model.ActiveLoanRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const loanCols = `id, book_id, student_name, loan_date, return_date, status`

func scanLoan(row interface{ Scan(...any) error }) (*model.Loan, error) {
	var l model.Loan
	err := row.Scan(&l.ID, &l.BookID, &l.StudentName, &l.LoanDate, &l.ReturnDate, &l.Status)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// OpenLoan moves one unit of stock onto a new active loan. The book row
// is locked FOR UPDATE so two concurrent loans cannot both spend the
// last copy.
func (r *repo) OpenLoan(ctx context.Context, bookID int64, studentName string) (_ *model.Loan, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lock = `SELECT stock, status FROM books WHERE id=$1 FOR UPDATE`
	var stock int64
	var st model.BookStatus
	err = tx.QueryRowContext(ctx, lock, bookID).Scan(&stock, &st)
	if errors.Is(err, sql.ErrNoRows) {
		err = repository.ErrNotFound
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if st == model.BookDecommissioned {
		err = repository.ErrDecommissioned
		return nil, err
	}
	if stock == 0 {
		err = repository.ErrNoStock
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE books SET stock = stock - 1 WHERE id=$1`, bookID); err != nil {
		return nil, err
	}

	const ins = `
INSERT INTO loans (book_id, student_name, status)
VALUES ($1,$2,'ACTIVE')
RETURNING ` + loanCols
	l, err := scanLoan(tx.QueryRowContext(ctx, ins, bookID, studentName))
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return l, nil
}

// CloseLoan marks the loan returned and restores one unit of stock, even
// when the book has since been decommissioned.
func (r *repo) CloseLoan(ctx context.Context, id int64) (_ *model.Loan, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lock = `SELECT book_id, status FROM loans WHERE id=$1 FOR UPDATE`
	var bookID int64
	var st model.LoanStatus
	err = tx.QueryRowContext(ctx, lock, id).Scan(&bookID, &st)
	if errors.Is(err, sql.ErrNoRows) {
		err = repository.ErrNotFound
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if st == model.LoanReturned {
		err = repository.ErrAlreadyReturned
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `SELECT id FROM books WHERE id=$1 FOR UPDATE`, bookID); err != nil {
		return nil, err
	}

	const upd = `
UPDATE loans
SET status='RETURNED', return_date=NOW()
WHERE id=$1
RETURNING ` + loanCols
	l, err := scanLoan(tx.QueryRowContext(ctx, upd, id))
	if err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE books SET stock = stock + 1 WHERE id=$1`, bookID); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *repo) ListActiveLoans(ctx context.Context) ([]model.ActiveLoanRow, error) {
	const q = `
SELECT l.id, l.book_id, b.title, l.student_name, l.loan_date, l.status
FROM loans l
JOIN books b ON b.id = l.book_id
WHERE l.status='ACTIVE'
ORDER BY l.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ActiveLoanRow
	for rows.Next() {
		var h model.ActiveLoanRow
		if err := rows.Scan(&h.ID, &h.BookID, &h.BookTitle, &h.StudentName, &h.LoanDate, &h.Status); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
