// Package delivery defines the contract every inbound surface (HTTP API,
// pub/sub worker) implements so the cmd wiring can start them uniformly.
package delivery

import "context"

// Delivery is a long-running inbound surface. Serve blocks until the server
// stops; shutdown happens through the fx lifecycle hooks.
type Delivery interface {
	Serve(ctx context.Context) error
}
