// Package checkout turns an inbound cart into the line items, mode and
// metadata submitted to a hosted checkout provider.
//
// The Normalizer is the entry point:
//   - BuildLineItems maps cart items to catalog price references or inline price data
//   - SelectMode decides between a one-time payment and a subscription
//   - FilterForMode narrows a mixed cart to the items of one mode
//   - Normalize runs the full pipeline for an endpoint
//
// Everything here is request-scoped. Nothing is persisted.
package checkout
