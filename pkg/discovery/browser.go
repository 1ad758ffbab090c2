package discovery

import (
	"context"
	"time"

	"github.com/mash-protocol/setup-payload/pkg/payload"
)

// Browser provides mDNS service browsing capabilities.
type Browser interface {
	// BrowseCommissionable searches for devices in commissioning mode.
	// The channel is closed when the context is cancelled.
	BrowseCommissionable(ctx context.Context) (<-chan *CommissionableNode, error)

	// Stop stops all active browsing operations.
	Stop()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout bounds a browse whose context has no deadline.
	// Zero means browse until the context is cancelled.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
		Interface:     "",
	}
}

// ServiceEntry is a resolved mDNS service instance, independent of the
// mDNS library that produced it.
type ServiceEntry struct {
	Instance string
	Host     string
	Port     uint16
	Text     []string
	Addrs    []string
}

// ToCommissionableNode converts a ServiceEntry to CommissionableNode.
func (e *ServiceEntry) ToCommissionableNode() (*CommissionableNode, error) {
	node := &CommissionableNode{
		InstanceName: e.Instance,
		Host:         e.Host,
		Port:         e.Port,
		Addresses:    e.Addrs,
	}
	if err := DecodeCommissionableTXT(StringsToTXTRecords(e.Text), node); err != nil {
		return nil, err
	}
	return node, nil
}

// FindForPayload browses until a node matching p appears or ctx is done.
func FindForPayload(ctx context.Context, b Browser, p *payload.SetupPayload) (*CommissionableNode, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	nodes, err := b.BrowseCommissionable(ctx)
	if err != nil {
		return nil, err
	}

	node, ok := <-FilterBrowseResults(ctx, nodes, FilterByPayload(p))
	if !ok {
		return nil, ErrNotFound
	}
	return node, nil
}

// FindAllForPayload collects every node matching p until ctx is done or
// the browse ends. A manual pairing code matches up to 256 discriminators,
// so more than one device may qualify.
func FindAllForPayload(ctx context.Context, b Browser, p *payload.SetupPayload) ([]*CommissionableNode, error) {
	nodes, err := b.BrowseCommissionable(ctx)
	if err != nil {
		return nil, err
	}

	var results []*CommissionableNode
	for node := range FilterBrowseResults(ctx, nodes, FilterByPayload(p)) {
		results = append(results, node)
	}
	return results, nil
}
