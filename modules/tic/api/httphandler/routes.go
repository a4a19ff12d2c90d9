package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/tic")

	r.Get("/comments", h.GetCommentsByTopic)
	r.Get("/comments/author/:author", h.GetCommentsByAuthor)
	r.Get("/comments/:id", h.GetComment)
	r.Get("/thread/:id", h.GetThread)
	r.Get("/topic/classify", h.ClassifyTopic)
	r.Get("/block", h.GetCurrentBlock)
	return nil
}
