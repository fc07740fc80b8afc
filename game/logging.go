package game

import (
	"log/slog"

	"github.com/pthm-cable/polygons/collision"
)

// logWorldState logs body counts and contact flags for the current tick.
func (s *Sim) logWorldState() {
	var resting, airborne, walled, ceiling int
	var deepest float64

	query := s.entityFilter.Query()
	for query.Next() {
		_, _, _, _, flags, contact := query.Get()
		if flags.Immovable || !flags.Alive {
			continue
		}

		t := contact.Touching
		switch {
		case t.Down:
			resting++
		case !t.Any():
			airborne++
		}
		if t.Left || t.Right {
			walled++
		}
		if t.Up {
			ceiling++
		}
		if contact.MaxOverlap > deepest {
			deepest = contact.MaxOverlap
		}
	}

	slog.Info("world",
		"tick", s.tick,
		"bodies", s.numBodies,
		"statics", s.numStatics,
		"resting", resting,
		"airborne", airborne,
		"walled", walled,
		"ceiling", ceiling,
		"deepest_overlap", deepest,
	)
}

// touchingNames lists the set sides in up, down, left, right order.
func touchingNames(t collision.Touching) []string {
	var names []string
	if t.Up {
		names = append(names, "up")
	}
	if t.Down {
		names = append(names, "down")
	}
	if t.Left {
		names = append(names, "left")
	}
	if t.Right {
		names = append(names, "right")
	}
	return names
}
