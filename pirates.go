// Package pirates provides the Pirates antagonist game rule for Dragonfly servers.
//
// The rule sits on top of Dragonfly and a small round flow (the Ticker) and provides:
//   - Selection of a captain, a first mate and crew from the ready players
//   - Equipping selected bodies with configured gear and moving them to the hostile faction
//   - Ghost-role spawn points for positions nobody was selected for
//   - A per-round roster of pirate minds, keyed by stable identity
//   - Round-start gating and mutual exclusion with lone-operative rules
//
// # Quick Start
//
// Initialize the rule in your server setup:
//
//	cfg, err := pirates.LoadRuleConfig("pirates.yaml")
//	if err != nil {
//	    panic(err)
//	}
//	mngr := pirates.NewBuilder().
//	    Settings(settings).
//	    Bundle(pirates.PiratesBundle(cfg)).
//	    Init()
//
//	for p := range srv.Accept() {
//	    sess, err := mngr.NewSession(pirates.PlayerBody(p))
//	    if err != nil {
//	        p.Disconnect(err.Error())
//	        continue
//	    }
//	    p.Handle(pirates.NewHandler(sess))
//	}
//
// Every round the Ticker adds the bundle's rules in the lobby, raises a
// RoundStartAttemptEvent and a RulePlayerSpawningEvent when the round starts,
// and drops the rules again on Restart.
//
// # Components
//
// Components are plain Go structs attached to sessions:
//
//	pirates.Add(sess, &pirates.Pirate{})
//	pir := pirates.Get[pirates.Pirate](sess)
//	pirates.Remove[pirates.Pirate](sess)
//
// Adding a component dispatches a ComponentInitEvent to every subscribed rule.
//
// # Events
//
// Rules subscribe to the Dispatcher by implementing capability interfaces such as
// RoundStartAttemptHandler or MindAddedHandler. Events are dispatched synchronously
// and each handler runs to completion before the next event is processed.
package pirates

// Version is the pirates rule version.
const Version = "1.0.0"
