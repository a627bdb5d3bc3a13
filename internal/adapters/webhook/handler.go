package webhook

import (
	"context"

	"feedback_gate/internal/domain"
)

// ForwardHandler is the injected submission handler backed by an external
// endpoint. Unlike the sink, its outcome matters: a transport error or error
// status here is exactly what turns into the user-visible Failed state.
type ForwardHandler struct{ c *Client }

func NewForwardHandler(c *Client) *ForwardHandler { return &ForwardHandler{c: c} }

func (h *ForwardHandler) Handle(ctx context.Context, sub domain.Submission) error {
	_, err := h.c.Post(ctx, sub)
	return err
}
