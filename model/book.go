// model/book.go
package model

import "time"

type BookStatus string

const (
	BookActive         BookStatus = "ACTIVE"
	BookDecommissioned BookStatus = "DECOMMISSIONED"
)

type Book struct {
	ID                 int64      `json:"id"`
	Title              string     `json:"title"`
	Author             string     `json:"author"`
	ISBN               string     `json:"isbn"`
	Stock              int64      `json:"stock"`
	Status             BookStatus `json:"status"`
	DecommissionReason *string    `json:"decommissionReason,omitempty"`
	DecommissionedAt   *time.Time `json:"decommissionedAt,omitempty"`
}
