// Package api wires the HTTP surface: REST collaborators (auth, code
// execution, room stats) and the WebSocket upgrade endpoint.
package api

import (
	"github.com/gin-gonic/gin"

	"cosync/internal/auth"
	"cosync/internal/runner"
	"cosync/internal/store"
	"cosync/internal/ws"
)

type Deps struct {
	Mode   string
	Tokens *auth.Tokens
	Users  *store.UserStore
	Runner *runner.Client
	Hub    *ws.Hub
	Socket *ws.Server
}

func SetupRouter(d Deps) *gin.Engine {
	if d.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if d.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	api := r.Group("/api")

	a := api.Group("/auth")
	a.POST("/register", d.register)
	a.POST("/login", d.login)
	a.GET("/me", d.requireSession(), d.me)

	run := api.Group("/run")
	run.POST("", d.execute)
	run.GET("/runtimes", d.runtimes)

	api.GET("/rooms/:id/members", d.roomMembers)

	api.GET("/ws", d.Socket.Handle)

	return r
}
