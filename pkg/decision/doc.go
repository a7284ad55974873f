// Package decision orchestrates variation decisions for experiments and
// feature flags.
//
// For an experiment, the pipeline is an ordered short-circuit chain and the
// first rule that produces a result wins:
//
//  1. A paused experiment decides nothing.
//  2. Forced variations (configuration-level overrides).
//  3. Whitelisting (the experiment's own per-user variation map).
//  4. Sticky bucketing through the configured user profile store.
//  5. Audience targeting.
//  6. Deterministic hash bucketing, persisting fresh decisions back to the
//     profile store.
//
// For a feature flag, attached experiments are tried first in configured
// order; if none decides, the flag's rollout rules are evaluated in
// priority order, ending in the unconditional "everyone else" rule.
//
// "User not in experiment" is a normal outcome, signalled by a nil
// variation, never by an error. Collaborator failures (profile store
// outages, malformed stored profiles, unresolvable configuration
// references) are logged and treated as absence so a decision is always
// reached.
package decision
