// Package live provides push-updated query results.
//
// A Query is a cold description of a read. Subscribing starts it: the
// subscriber receives the current result immediately and a fresh result every
// time one of the topics the query watches is signalled, until the
// subscription is closed or its context is cancelled.
//
// Delivery is conflating. A subscriber that falls behind observes the newest
// result on its next receive, never a backlog of stale ones.
//
// Combinators build dependent reads out of simpler ones:
//
//   - Map transforms every result.
//   - SwitchMap re-targets an inner query whenever the key of the outer
//     result changes, closing the previous inner subscription first.
//   - Share multiplexes one upstream subscription to many subscribers and
//     keeps it alive for a grace period after the last one leaves.
//   - First reads a single result and releases the subscription.
package live
