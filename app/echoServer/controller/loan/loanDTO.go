package loan

type CreateLoanReq struct {
	BookID      int64  `json:"bookId" validate:"required,gt=0"`
	StudentName string `json:"studentName" validate:"required"`
}
