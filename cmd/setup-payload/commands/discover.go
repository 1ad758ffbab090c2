package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mash-protocol/setup-payload/pkg/discovery"
	"github.com/mash-protocol/setup-payload/pkg/payload"
)

// DiscoverOptions configures the discover command.
type DiscoverOptions struct {
	Timeout   time.Duration
	Interface string
	All       bool
	Input     string
}

// newBrowser creates the mDNS browser used by discover. Tests replace it.
var newBrowser = func(cfg discovery.BrowserConfig) (discovery.Browser, error) {
	b, err := discovery.NewMDNSBrowser(cfg)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// RunDiscover runs the discover command.
func RunDiscover(args []string, stdout, stderr io.Writer) int {
	opts, help, err := parseDiscoverArgs(args, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printDiscoverUsage(stderr)
		return exitCommandError
	}
	if help {
		return exitSuccess
	}

	p, err := payload.Parse(opts.Input)
	if err != nil {
		return reportError(stderr, err)
	}

	cfg := discovery.DefaultBrowserConfig()
	cfg.BrowseTimeout = opts.Timeout
	cfg.Interface = opts.Interface

	browser, err := newBrowser(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer browser.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	fmt.Fprintf(stdout, "Browsing %s for discriminator %s...\n", discovery.ServiceTypeCommissionable, p.Discriminator)

	var nodes []*discovery.CommissionableNode
	if opts.All {
		nodes, err = discovery.FindAllForPayload(ctx, browser, p)
	} else {
		var node *discovery.CommissionableNode
		node, err = discovery.FindForPayload(ctx, browser, p)
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	if err == nil && len(nodes) == 0 {
		err = discovery.ErrNotFound
	}
	if err != nil {
		if errors.Is(err, discovery.ErrNotFound) {
			fmt.Fprintf(stderr, "Error: %v within %s\n", err, opts.Timeout)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitCommandError
	}

	for _, n := range nodes {
		printNode(stdout, n)
	}
	return exitSuccess
}

func printNode(w io.Writer, n *discovery.CommissionableNode) {
	fmt.Fprintf(w, "\n%s\n", n.InstanceName)
	printField(w, "  Host", fmt.Sprintf("%s:%d", n.Host, n.Port))
	if len(n.Addresses) > 0 {
		printField(w, "  Addresses", strings.Join(n.Addresses, ", "))
	}
	printField(w, "  Long Discriminator", fmt.Sprintf("%d (0x%03X)", n.Discriminator, n.Discriminator))
	if n.HasVendorID {
		printField(w, "  Vendor ID", fmt.Sprintf("%d (0x%04X)", n.VendorID, n.VendorID))
	}
	if n.HasProductID {
		printField(w, "  Product ID", fmt.Sprintf("%d (0x%04X)", n.ProductID, n.ProductID))
	}
	printField(w, "  Commissioning Mode", n.CommissioningMode.String())
	if n.DeviceName != "" {
		printField(w, "  Device Name", n.DeviceName)
	}
}

func parseDiscoverArgs(args []string, stdout io.Writer) (*DiscoverOptions, bool, error) {
	fs := flag.NewFlagSet("discover", flag.ContinueOnError)
	opts := &DiscoverOptions{}

	fs.DurationVar(&opts.Timeout, "timeout", discovery.BrowseTimeout, "How long to browse")
	fs.DurationVar(&opts.Timeout, "t", discovery.BrowseTimeout, "How long to browse (shorthand)")
	fs.StringVar(&opts.Interface, "interface", "", "Network interface (default: all)")
	fs.StringVar(&opts.Interface, "i", "", "Network interface (shorthand)")
	fs.BoolVar(&opts.All, "all", false, "List every matching device until the timeout")

	help, err := parseFlags(fs, args, printDiscoverUsage, stdout)
	if help || err != nil {
		return opts, help, err
	}

	opts.Input = strings.Join(fs.Args(), " ")
	if opts.Input == "" {
		return opts, false, errors.New("no payload specified")
	}
	if opts.Timeout <= 0 {
		return opts, false, fmt.Errorf("invalid timeout %s", opts.Timeout)
	}
	return opts, false, nil
}

func printDiscoverUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: setup-payload discover [options] <payload>

Browses _matterc._udp for devices whose discriminator and vendor/product
IDs match the payload. A manual code matches on the short discriminator
only, so --all may list several devices.

Options:
  -t, --timeout    How long to browse [default: 10s]
  -i, --interface  Network interface [default: all]
  --all            List every match instead of stopping at the first

Examples:
  setup-payload discover MT:-24J0AFN00KA0648G00
  setup-payload discover --all --timeout 5s 34970112332`)
}
