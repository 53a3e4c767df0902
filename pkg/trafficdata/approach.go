// Package trafficdata reads the traffic volume and signal phase tables that
// drive the intersection engines.
package trafficdata

import (
	"fmt"
	"strings"
)

// Approach is the side of an intersection a vehicle arrives from
type Approach int

const (
	North Approach = iota
	East
	South
	West
)

// Approaches lists every approach in clockwise order
var Approaches = [...]Approach{North, East, South, West}

var approachNames = [...]string{"N", "E", "S", "W"}

var approachAliases = map[string]Approach{
	"n": North, "north": North, "nb": North,
	"e": East, "east": East, "eb": East,
	"s": South, "south": South, "sb": South,
	"w": West, "west": West, "wb": West,
}

func (a Approach) String() string {
	if a < North || a > West {
		return fmt.Sprintf("approach(%d)", int(a))
	}
	return approachNames[a]
}

// Opposite returns the approach facing a
func (a Approach) Opposite() Approach {
	return (a + 2) % 4
}

// ParseApproach accepts single letters, full names and bound suffixes in any case
func ParseApproach(s string) (Approach, error) {
	if a, ok := approachAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("unknown approach %q", s)
}
