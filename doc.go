// Package expkit is the decision core of a feature experimentation SDK.
//
// Given a project datafile, it deterministically assigns visitors to
// experiment variations and feature rollouts. The same user id, datafile and
// attributes always produce the same decision, on any machine, with no
// coordination.
//
// Key features:
//
//   - Deterministic MurmurHash3 bucketing with stable cross-process results
//   - Forced variations, whitelists and sticky user profiles layered over
//     the hash
//   - Audience targeting with nestable and/or/not condition trees
//   - Feature flags backed by experiments and percentage rollouts
//   - Typed notifications for decisions and conversions
//
// Basic usage:
//
//	raw, _ := os.ReadFile("datafile.json")
//	client, err := expkit.NewClient(raw)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	variation, err := client.Activate(ctx, "checkout_redesign", "visitor-42", map[string]any{
//		"device_type": "iPhone",
//	})
//
//	if enabled, _ := client.IsFeatureEnabled(ctx, "new_search", "visitor-42", nil); enabled {
//		// serve the new search experience
//	}
//
// Sticky bucketing is enabled by attaching a profile store:
//
//	client, err := expkit.NewClient(raw,
//		expkit.WithProfileStore(userprofile.NewMemoryStore()),
//	)
//
// Decision and conversion notifications are delivered through the client's
// notification center:
//
//	client.Notifications().AddHandler(notification.Decision, func(payload any) {
//		d := payload.(notification.DecisionPayload)
//		log.Printf("user %s got variation %s", d.UserID, d.Variation.Key)
//	})
//
// The heavy lifting lives in the sub-packages: pkg/bucketer (hashing),
// pkg/decision (the precedence pipeline), pkg/projectconfig (datafile
// parsing), pkg/condition (audience evaluation), pkg/userprofile (sticky
// storage) and pkg/notification (listener registry). This package wires them
// into a single convenient client.
package expkit
