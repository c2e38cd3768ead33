package main

import (
	"context"
	"fmt"

	"github.com/turtacn/Graphyte-Intelligence/internal/bootstrap"
	"github.com/turtacn/Graphyte-Intelligence/internal/interfaces/http/handlers"
)

// healthCheckers adapts the component probes to the readiness handler.
func healthCheckers(c *bootstrap.Components) []handlers.HealthChecker {
	checks := c.HealthChecks()
	out := make([]handlers.HealthChecker, 0, len(checks))
	for _, hc := range checks {
		out = append(out, handlers.CheckerFunc(hc.Name, hc.Check))
	}
	return out
}

// readinessProbe fails with the first unhealthy component.
func readinessProbe(c *bootstrap.Components) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		for _, hc := range c.HealthChecks() {
			if err := hc.Check(ctx); err != nil {
				return fmt.Errorf("%s: %w", hc.Name, err)
			}
		}
		return nil
	}
}

//Personal.AI order the ending
