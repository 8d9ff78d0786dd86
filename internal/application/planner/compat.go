package planner

import "github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"

type cityPair struct {
	origin      string
	destination string
}

// CompatibilityIndex holds every (origin city, destination city) pair served by
// at least one direct leg. Absence of a pair proves there is no direct round
// trip; presence proves nothing about time windows.
type CompatibilityIndex struct {
	pairs map[cityPair]struct{}
}

func BuildCompatibilityIndex(legs []models.FlightLeg) CompatibilityIndex {
	idx := CompatibilityIndex{pairs: make(map[cityPair]struct{})}
	for _, leg := range legs {
		if !leg.IsDirect() {
			continue
		}
		idx.pairs[cityPair{origin: leg.OriginCity, destination: leg.DestinationCity}] = struct{}{}
	}
	return idx
}

func (c CompatibilityIndex) Has(origin, destination string) bool {
	_, ok := c.pairs[cityPair{origin: origin, destination: destination}]
	return ok
}

func (c CompatibilityIndex) Len() int {
	return len(c.pairs)
}
