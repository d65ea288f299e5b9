package web

import (
	"github.com/emicklei/go-restful/v3"
)

// RegisterRoutes mounts the front-end routes on the container.
func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.Route(ws.GET("/").
		To(handler.Index).
		Doc("Search form").
		Produces("text/html"))

	ws.Route(ws.GET("/search").
		To(handler.Search).
		Doc("Run a search and render the results table").
		Produces("text/html"))

	ws.Route(ws.GET("/export").
		To(handler.Export).
		Doc("Run a search and download the results as CSV").
		Produces("text/csv"))

	ws.Route(ws.GET("/healthz").
		To(handler.Health).
		Doc("Liveness check").
		Produces(restful.MIME_JSON))

	container.Add(ws)
}
