// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"

	"vaccine-tracker-bot/internal/domain/model"
)

// Attachment is a chart reference delivered alongside a report.
type Attachment struct {
	Ref     string // URL or path returned by the chart renderer
	Caption string
}

// Deliverer hands a rendered snapshot to the transport layer.
// Failures are reported to the caller and never retried by the core.
type Deliverer interface {
	Deliver(ctx context.Context, recipient model.RecipientID, text string, attachments []Attachment) error
}
