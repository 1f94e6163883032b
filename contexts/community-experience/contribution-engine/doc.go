// Package contributionengine implements the Contribution & Reputation
// Engine inside the community-experience context.
//
// The module owns the append-only contribution ledger, the incremental fold
// of events into per-user score/streak state, tier classification, and the
// on-demand full recalculation that replays the ledger. Tier transitions are
// produced through outbox-backed workers. Business rules live in the
// domain/application layers; infrastructure stays behind ports and adapters.
package contributionengine
