// model/loan.go
package model

import "time"

type LoanStatus string

const (
	LoanActive   LoanStatus = "ACTIVE"
	LoanReturned LoanStatus = "RETURNED"
)

type Loan struct {
	ID          int64      `json:"id"`
	BookID      int64      `json:"bookId"`
	StudentName string     `json:"studentName"`
	LoanDate    time.Time  `json:"loanDate"`
	ReturnDate  *time.Time `json:"returnDate,omitempty"`
	Status      LoanStatus `json:"status"`
}

// ActiveLoanRow is the listing shape for active loans. BookTitle is
// joined in at query time from the catalog, never stored on the loan.
type ActiveLoanRow struct {
	ID          int64      `json:"id"`
	BookID      int64      `json:"bookId"`
	BookTitle   string     `json:"bookTitle"`
	StudentName string     `json:"studentName"`
	LoanDate    time.Time  `json:"loanDate"`
	Status      LoanStatus `json:"status"`
}
