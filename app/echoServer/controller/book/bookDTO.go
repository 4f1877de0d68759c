package book

type BookReq struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	ISBN   string `json:"isbn" validate:"required"`
	Stock  int64  `json:"stock" validate:"gte=0"`
}

type DecommissionReq struct {
	Reason string `json:"reason"`
}
