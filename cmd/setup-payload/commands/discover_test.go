package commands

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mash-protocol/setup-payload/pkg/discovery"
	"github.com/mash-protocol/setup-payload/pkg/discovery/mocks"
)

func useBrowser(t *testing.T, b discovery.Browser, err error) {
	t.Helper()
	orig := newBrowser
	newBrowser = func(discovery.BrowserConfig) (discovery.Browser, error) {
		return b, err
	}
	t.Cleanup(func() { newBrowser = orig })
}

func nodes(ns ...*discovery.CommissionableNode) <-chan *discovery.CommissionableNode {
	ch := make(chan *discovery.CommissionableNode, len(ns))
	for _, n := range ns {
		ch <- n
	}
	close(ch)
	return ch
}

var testNode = &discovery.CommissionableNode{
	InstanceName:      "DD200C20D25AE5F7",
	Host:              "light.local.",
	Port:              5540,
	Addresses:         []string{"192.168.1.20"},
	Discriminator:     3840,
	VendorID:          0xFFF1,
	ProductID:         0x8001,
	HasVendorID:       true,
	HasProductID:      true,
	CommissioningMode: discovery.CommissioningModeBasic,
}

func TestRunDiscover_Found(t *testing.T) {
	browser := mocks.NewMockBrowser(t)
	browser.EXPECT().BrowseCommissionable(mock.Anything).Return(nodes(testNode), nil).Once()
	browser.EXPECT().Stop().Return().Once()
	useBrowser(t, browser, nil)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	code := RunDiscover([]string{"--timeout", "1s", "MT:-24J0AFN00KA0648G00"}, stdout, stderr)

	assert.Equal(t, exitSuccess, code, stderr.String())
	assert.Contains(t, stdout.String(), "DD200C20D25AE5F7")
	assert.Contains(t, stdout.String(), "light.local.:5540")
	assert.Contains(t, stdout.String(), "BASIC")
}

func TestRunDiscover_All(t *testing.T) {
	other := *testNode
	other.InstanceName = "AAAA"
	other.Discriminator = 0xF01
	stranger := *testNode
	stranger.InstanceName = "BBBB"
	stranger.Discriminator = 0x001

	browser := mocks.NewMockBrowser(t)
	browser.EXPECT().BrowseCommissionable(mock.Anything).Return(nodes(testNode, &other, &stranger), nil).Once()
	browser.EXPECT().Stop().Return().Once()
	useBrowser(t, browser, nil)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	code := RunDiscover([]string{"--all", "-t", "1s", "34970112332"}, stdout, stderr)

	assert.Equal(t, exitSuccess, code, stderr.String())
	assert.Contains(t, stdout.String(), "DD200C20D25AE5F7")
	assert.Contains(t, stdout.String(), "AAAA")
	assert.NotContains(t, stdout.String(), "BBBB")
}

func TestRunDiscover_NotFound(t *testing.T) {
	browser := mocks.NewMockBrowser(t)
	browser.EXPECT().BrowseCommissionable(mock.Anything).Return(nodes(), nil).Once()
	browser.EXPECT().Stop().Return().Once()
	useBrowser(t, browser, nil)

	stderr := &bytes.Buffer{}
	code := RunDiscover([]string{"-t", "50ms", "34970112332"}, &bytes.Buffer{}, stderr)

	assert.Equal(t, exitCommandError, code)
	assert.Contains(t, stderr.String(), "no matching commissionable device found within 50ms")
}

func TestRunDiscover_BrowserError(t *testing.T) {
	useBrowser(t, nil, errors.New("no multicast interface"))

	stderr := &bytes.Buffer{}
	code := RunDiscover([]string{"34970112332"}, &bytes.Buffer{}, stderr)

	assert.Equal(t, exitCommandError, code)
	assert.Contains(t, stderr.String(), "no multicast interface")
}

func TestRunDiscover_BadPayload(t *testing.T) {
	stderr := &bytes.Buffer{}
	code := RunDiscover([]string{"34970112333"}, &bytes.Buffer{}, stderr)

	assert.Equal(t, exitPayloadError, code)
	assert.Contains(t, stderr.String(), "checksum mismatch")
}

func TestParseDiscoverArgs(t *testing.T) {
	opts, help, err := parseDiscoverArgs([]string{"-i", "eth0", "--timeout", "2s", "3497", "011", "2332"}, &bytes.Buffer{})
	assert.NoError(t, err)
	assert.False(t, help)
	assert.Equal(t, "eth0", opts.Interface)
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.Equal(t, "3497 011 2332", opts.Input)

	_, _, err = parseDiscoverArgs([]string{"--timeout", "0s", "34970112332"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, _, err = parseDiscoverArgs(nil, &bytes.Buffer{})
	assert.EqualError(t, err, "no payload specified")
}

func TestRunDiscover_BrowserConfig(t *testing.T) {
	browser := mocks.NewMockBrowser(t)
	browser.EXPECT().BrowseCommissionable(mock.Anything).Return(nodes(testNode), nil).Once()
	browser.EXPECT().Stop().Return().Once()

	var got discovery.BrowserConfig
	orig := newBrowser
	newBrowser = func(cfg discovery.BrowserConfig) (discovery.Browser, error) {
		got = cfg
		return browser, nil
	}
	t.Cleanup(func() { newBrowser = orig })

	stderr := &bytes.Buffer{}
	code := RunDiscover([]string{"-t", "3s", "-i", "eth1", "MT:-24J0AFN00KA0648G00"}, &bytes.Buffer{}, stderr)

	assert.Equal(t, exitSuccess, code, stderr.String())
	assert.Equal(t, 3*time.Second, got.BrowseTimeout)
	assert.Equal(t, "eth1", got.Interface)
}
