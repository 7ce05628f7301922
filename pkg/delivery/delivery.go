// Package delivery hands assembled digest reports to an outbound transport.
// The digest core only depends on the Sender interface; the SES implementation
// lives here so every transport detail stays out of the aggregation path.
package delivery

import (
	"context"

	"github.com/de-tools/site-digest/pkg/models/domain"
)

// Delivery is one outbound digest: who receives it and what they receive.
type Delivery struct {
	Recipients []string
	Subject    string
	Report     *domain.Report
}

// Sender transmits one digest. Implementations own transport retries; a
// returned error means this delivery cycle failed.
type Sender interface {
	Send(ctx context.Context, d Delivery) error
}
