package echoServer

import (
	"log/slog"

	"github.com/felipe-nonato/Saber-IFPB/app/echoServer/controller/book"
	"github.com/felipe-nonato/Saber-IFPB/app/echoServer/controller/history"
	"github.com/felipe-nonato/Saber-IFPB/app/echoServer/controller/recommend"
	"github.com/felipe-nonato/Saber-IFPB/app/echoServer/controller/rental"

	"github.com/labstack/echo/v4"
)

type C struct {
	Book      *book.Controller
	Rental    *rental.Controller
	History   *history.Controller
	Recommend *recommend.Controller
	JWTSecret string
	Log       *slog.Logger
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.GET("/books", c.Book.List)
	pub.GET("/books/stats", c.Book.Stats)
	pub.GET("/books/:id", c.Book.Detail)

	// Auth
	auth := e.Group("/v1")
	auth.Use(JWTAuth(c.JWTSecret, c.Log))

	// Lifecycle
	auth.POST("/books", c.Rental.Deposit)
	auth.POST("/books/:id/rent", c.Rental.Rent)
	auth.POST("/books/:id/return", c.Rental.Return)
	auth.POST("/books/:id/reserve", c.Rental.Reserve)
	auth.DELETE("/books/:id/reserve", c.Rental.CancelReservation)
	auth.GET("/books/:id/reservations", c.Rental.Queue)

	// Me
	auth.GET("/users/me/returned", c.History.Returned)
	auth.GET("/users/me/read", c.History.Read)
	auth.GET("/users/me/recommendations", c.Recommend.List)
}
