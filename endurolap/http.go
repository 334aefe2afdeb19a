package endurolap

import (
	"github.com/opensurg/pivotctl/generichttp/holder"
)

// NewHTTPWrapper returns an HTTP wrapper around a Holder with the
// standard holder route table
func NewHTTPWrapper(h *Holder) holder.HTTPHolderController {
	return holder.NewHTTPHolderController(h)
}
