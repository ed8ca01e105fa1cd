package policy

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Policy decides what happens when a scan or delete step fails
type Policy string

const (
	// Abort stops the whole run on the first error
	Abort Policy = "abort"
	// Skip logs the error and continues with the next item
	Skip Policy = "skip"
	// Collect continues like Skip but keeps every error for the final report
	Collect Policy = "collect"
)

var ErrInvalidPolicy = errors.New("policy: invalid error policy")

// Parse converts a config or flag value into a Policy
func Parse(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case Abort, Skip, Collect:
		return p, nil
	case "":
		return Abort, nil
	default:
		return "", fmt.Errorf("%w: %q (must be abort, skip, or collect)", ErrInvalidPolicy, s)
	}
}

func (p Policy) String() string { return string(p) }

// Collector applies a Policy to a stream of errors
type Collector struct {
	policy Policy
	errs   []error
}

// NewCollector creates a collector for the given policy
func NewCollector(p Policy) *Collector {
	return &Collector{policy: p}
}

// Handle returns err unchanged under Abort. Under Skip and Collect it
// swallows the error (recording it for Collect) and returns nil.
func (c *Collector) Handle(err error) error {
	if err == nil {
		return nil
	}
	switch c.policy {
	case Skip:
		return nil
	case Collect:
		c.errs = append(c.errs, err)
		return nil
	default:
		return err
	}
}

// Errors returns the recorded errors
func (c *Collector) Errors() []error {
	return c.errs
}

// Err combines the recorded errors, or nil when none were recorded
func (c *Collector) Err() error {
	return multierr.Combine(c.errs...)
}
