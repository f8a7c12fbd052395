package api

import "context"

// Exchanger performs exchanges. *Client is the production implementation;
// tests substitute canned Results to drive the normalization path directly.
//
// Implementations must send exactly one Result on the returned channel.
type Exchanger interface {
	Exchange(ctx context.Context, req Request) <-chan Result
}

// delivery carries the per-client settings the normalization path needs.
type delivery struct {
	mode       DeliveryMode
	dispatcher Dispatcher
}

func (c *Client) delivery() delivery {
	d := delivery{mode: c.Delivery, dispatcher: c.Dispatcher}
	if d.dispatcher == nil {
		d.dispatcher = Inline
	}
	return d
}
