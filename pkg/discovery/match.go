package discovery

import (
	"context"

	"github.com/mash-protocol/setup-payload/pkg/payload"
)

// Matches reports whether node is a candidate for commissioning with p.
func Matches(node *CommissionableNode, p *payload.SetupPayload) bool {
	if !p.Discriminator.Matches(node.Discriminator) {
		return false
	}
	if !p.HasVendorProduct() {
		return true
	}
	if node.HasVendorID && p.VendorID != 0 && node.VendorID != p.VendorID {
		return false
	}
	if node.HasProductID && p.ProductID != 0 && node.ProductID != p.ProductID {
		return false
	}
	return true
}

// FilterFunc is a function that filters browse results.
type FilterFunc func(*CommissionableNode) bool

// FilterByPayload returns a filter accepting nodes that match p.
func FilterByPayload(p *payload.SetupPayload) FilterFunc {
	return func(node *CommissionableNode) bool {
		return Matches(node, p)
	}
}

// FilterBrowseResults forwards the nodes from in that pass filter. The
// returned channel is closed when in is closed or ctx is done, so a
// consumer that stops reading must cancel ctx.
func FilterBrowseResults(ctx context.Context, in <-chan *CommissionableNode, filter FilterFunc) <-chan *CommissionableNode {
	out := make(chan *CommissionableNode)
	go func() {
		defer close(out)
		for {
			select {
			case node, ok := <-in:
				if !ok {
					return
				}
				if !filter(node) {
					continue
				}
				select {
				case out <- node:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
