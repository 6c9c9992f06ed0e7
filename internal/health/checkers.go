// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"

	"github.com/ManuGH/albumplay/internal/library"
)

// FuncChecker adapts a probe function to a Checker. A nil error is healthy.
type FuncChecker struct {
	name  string
	probe func(ctx context.Context) error
}

// NewFuncChecker creates a checker named name around probe.
func NewFuncChecker(name string, probe func(ctx context.Context) error) *FuncChecker {
	return &FuncChecker{name: name, probe: probe}
}

func (c *FuncChecker) Name() string { return c.name }

func (c *FuncChecker) Check(ctx context.Context) CheckResult {
	if err := c.probe(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy}
}

// RootLister is the part of the library service the library checker reads.
type RootLister interface {
	Roots(ctx context.Context) ([]library.Root, error)
}

// LibraryChecker reports the scan state of the library roots. Failed or
// degraded roots degrade the daemon; only an unreadable index is unhealthy.
type LibraryChecker struct {
	roots RootLister
}

// NewLibraryChecker creates a checker over the library roots.
func NewLibraryChecker(roots RootLister) *LibraryChecker {
	return &LibraryChecker{roots: roots}
}

func (c *LibraryChecker) Name() string { return "library" }

func (c *LibraryChecker) Check(ctx context.Context) CheckResult {
	roots, err := c.roots.Roots(ctx)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error(), Message: "library index unreadable"}
	}
	if len(roots) == 0 {
		return CheckResult{Status: StatusDegraded, Message: "no library roots configured"}
	}

	var bad, denied int
	for _, r := range roots {
		switch r.LastScanStatus {
		case library.RootStatusFailed, library.RootStatusDegraded:
			bad++
		}
		if r.AccessDenied {
			denied++
		}
	}
	switch {
	case denied > 0:
		return CheckResult{Status: StatusDegraded, Message: fmt.Sprintf("%d of %d roots denied access", denied, len(roots))}
	case bad > 0:
		return CheckResult{Status: StatusDegraded, Message: fmt.Sprintf("%d of %d roots failed their last scan", bad, len(roots))}
	}
	return CheckResult{Status: StatusHealthy, Message: fmt.Sprintf("%d roots", len(roots))}
}
