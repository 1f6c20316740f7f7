package pirates

import (
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
)

// TargetCount returns how many pirates a round with total connected players
// should have: total/PlayersPerPirate clamped to [1, MaxPirates].
func TargetCount(total int, cfg *RuleConfig) int {
	n := total / cfg.PlayersPerPirate
	return max(1, min(n, cfg.MaxPirates))
}

// candidateLists holds the preference tiers used during selection.
type candidateLists struct {
	everyone  []*Session
	captain   []*Session
	firstMate []*Session
	crew      []*Session
}

func newCandidateLists(pool []*Session, profiles map[uuid.UUID]*Profile, cfg *RuleConfig) *candidateLists {
	c := &candidateLists{everyone: slices.Clone(pool)}
	for _, s := range pool {
		p, ok := profiles[s.UUID()]
		if !ok {
			continue
		}
		if p.Prefers(cfg.CrewRole) {
			c.crew = append(c.crew, s)
		}
		if p.Prefers(cfg.FirstMateRole) {
			c.firstMate = append(c.firstMate, s)
		}
		if p.Prefers(cfg.CaptainRole) {
			c.captain = append(c.captain, s)
		}
	}
	return c
}

// take picks from the first non-empty tier and removes the pick from every list.
func (c *candidateLists) take(r *rand.Rand, tiers ...*[]*Session) (*Session, string, bool) {
	names := map[*[]*Session]string{
		&c.captain:   "captain",
		&c.firstMate: "first mate",
		&c.crew:      "crew",
		&c.everyone:  "anyone",
	}
	for _, tier := range append(tiers, &c.everyone) {
		if len(*tier) == 0 {
			continue
		}
		s := PickAndTake(r, tier)
		c.remove(s)
		return s, names[tier], true
	}
	return nil, "", false
}

func (c *candidateLists) remove(s *Session) {
	match := func(o *Session) bool { return o == s }
	c.everyone = slices.DeleteFunc(c.everyone, match)
	c.captain = slices.DeleteFunc(c.captain, match)
	c.firstMate = slices.DeleteFunc(c.firstMate, match)
	c.crew = slices.DeleteFunc(c.crew, match)
}

// SelectPirates picks up to TargetCount(total, cfg) sessions from pool in
// position order: index 0 is the captain, index 1 the first mate, the rest crew.
//
// Every position falls back tier by tier to any remaining session. Selection
// stops early when the pool runs dry. pool itself is not modified.
func SelectPirates(pool []*Session, profiles map[uuid.UUID]*Profile, total int, cfg *RuleConfig, r *rand.Rand, log *slog.Logger) []*Session {
	if log == nil {
		log = slog.Default()
	}

	lists := newCandidateLists(pool, profiles, cfg)
	target := TargetCount(total, cfg)
	selected := make([]*Session, 0, target)

	for i := range target {
		var (
			s    *Session
			tier string
			ok   bool
		)
		switch i {
		case 0:
			s, tier, ok = lists.take(r, &lists.captain, &lists.firstMate, &lists.crew)
		case 1:
			s, tier, ok = lists.take(r, &lists.firstMate, &lists.crew)
		default:
			s, tier, ok = lists.take(r, &lists.crew)
		}
		if !ok {
			log.Info("pirates: insufficient ready players to fill up with pirates, stopping the selection",
				"selected", len(selected),
				"target", target)
			break
		}

		log.Info("pirates: selected pirate",
			"position", i,
			"player", s.Name(),
			"tier", tier)
		selected = append(selected, s)
	}

	return selected
}
