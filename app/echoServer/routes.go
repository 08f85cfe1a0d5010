package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	authctrl "github.com/PawelKwidzinski/console-and-games-rental/app/echoServer/controller/auth"
	feedbackctrl "github.com/PawelKwidzinski/console-and-games-rental/app/echoServer/controller/feedback"
	gamectrl "github.com/PawelKwidzinski/console-and-games-rental/app/echoServer/controller/game"
	lendingctrl "github.com/PawelKwidzinski/console-and-games-rental/app/echoServer/controller/lending"
)

type C struct {
	Auth     *authctrl.Controller
	Game     *gamectrl.Controller
	Lending  *lendingctrl.Controller
	Feedback *feedbackctrl.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.GET("/auth/activate", c.Auth.Activate)
	pub.POST("/auth/login", c.Auth.Login)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	// user_id extraction from the verified claims
	auth.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			var claims jwt.MapClaims
			switch v := ctx.Get("user").(type) {
			case *jwt.Token:
				claims, _ = v.Claims.(jwt.MapClaims)
			case jwt.MapClaims:
				claims = v
			}
			if claims == nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			sub, ok := claims["sub"].(float64)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", int64(sub))
			return next(ctx)
		}
	})

	// Games
	auth.POST("/games", c.Game.Create)
	auth.GET("/games", c.Game.ListAll)
	auth.GET("/games/owned", c.Game.ListOwned)
	auth.GET("/games/borrowed", c.Game.ListBorrowed)
	auth.GET("/games/returned", c.Game.ListReturned)
	auth.GET("/games/:id", c.Game.Detail)
	auth.POST("/games/:id/cover", c.Game.UploadCover)

	// Lending lifecycle
	auth.POST("/games/:id/borrow", c.Lending.Borrow)
	auth.PATCH("/games/:id/return", c.Lending.Return)
	auth.PATCH("/games/:id/return/approve", c.Lending.ApproveReturn)
	auth.PATCH("/games/:id/shareable", c.Lending.SetShareable)
	auth.PATCH("/games/:id/archived", c.Lending.SetArchived)

	// Feedback
	auth.POST("/feedbacks", c.Feedback.Create)
	auth.GET("/feedbacks/game/:id", c.Feedback.ListByGame)
}
