package game

import (
	"github.com/mlange-42/ark/ecs"
)

// cleanupRetired removes bodies that were retired this tick.
func (s *Sim) cleanupRetired() {
	// First pass: collect retired entities (must complete before modifying)
	type retiredInfo struct {
		entity    ecs.Entity
		immovable bool
	}
	var toRemove []retiredInfo

	query := s.entityFilter.Query()
	for query.Next() {
		_, _, _, _, flags, _ := query.Get()
		if !flags.Alive {
			toRemove = append(toRemove, retiredInfo{entity: query.Entity(), immovable: flags.Immovable})
		}
	}

	// Second pass: remove entities (query iteration complete)
	for _, r := range toRemove {
		s.world.RemoveEntity(r.entity)
		if r.immovable {
			s.numStatics--
		} else {
			s.numBodies--
		}
	}
}
