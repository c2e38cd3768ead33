package main

import (
	"github.com/turtacn/Graphyte-Intelligence/internal/bootstrap"
	"github.com/turtacn/Graphyte-Intelligence/internal/interfaces/http/handlers"
)

func healthCheckers(c *bootstrap.Components) []handlers.HealthChecker {
	checks := c.HealthChecks()
	out := make([]handlers.HealthChecker, 0, len(checks))
	for _, hc := range checks {
		out = append(out, handlers.CheckerFunc(hc.Name, hc.Check))
	}
	return out
}

//Personal.AI order the ending
