package voltage

import "github.com/intel-msr-voltages/intel-msr-voltages/pkg/types"

// Setting holds an optional offset for each plane. The zero value has every
// plane unset; a plane set to 0 mV is distinct from an unset one.
type Setting struct {
	offsets [NumPlanes]types.Millivolts
	set     [NumPlanes]bool
}

// Set stores mv for p, replacing any earlier value. Invalid planes are ignored.
func (s *Setting) Set(p Plane, mv types.Millivolts) {
	if !p.Valid() {
		return
	}
	s.offsets[p] = mv
	s.set[p] = true
}

// Get returns the offset configured for p and whether there is one.
func (s Setting) Get(p Plane) (types.Millivolts, bool) {
	if !p.Valid() || !s.set[p] {
		return 0, false
	}
	return s.offsets[p], true
}

func (s Setting) IsSet(p Plane) bool {
	_, ok := s.Get(p)
	return ok
}

// Configured returns the planes that carry a value, in index order.
func (s Setting) Configured() []Plane {
	var out []Plane
	for _, p := range Planes() {
		if s.set[p] {
			out = append(out, p)
		}
	}
	return out
}

func (s Setting) Len() int { return len(s.Configured()) }

func (s Setting) Empty() bool { return s.Len() == 0 }
