package echoServer

import (
	"biblioteca/app/echoServer/controller/book"
	"biblioteca/app/echoServer/controller/loan"

	"github.com/labstack/echo/v4"
)

type C struct {
	Book *book.Controller
	Loan *loan.Controller
}

func Register(e *echo.Echo, c C) {
	api := e.Group("/api")

	// Books
	api.GET("/books", c.Book.List)
	api.GET("/books/:id", c.Book.Detail)
	api.POST("/books", c.Book.Create)
	api.PUT("/books/:id", c.Book.Update)
	api.DELETE("/books/:id", c.Book.Delete)
	api.POST("/books/dar-baja/:id", c.Book.Decommission)

	// Loans
	api.GET("/loans/active", c.Loan.ListActive)
	api.POST("/loans", c.Loan.Create)
	api.POST("/loans/return/:id", c.Loan.Return)
}
