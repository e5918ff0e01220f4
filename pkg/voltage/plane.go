package voltage

import (
	"fmt"
	"strings"
)

// Plane identifies one of the independently adjustable voltage domains.
// The numeric value is embedded in the register command, so the order is fixed.
type Plane int

const (
	CPUCore     Plane = iota // CPU cores
	IntelGPU                 // integrated graphics
	CPUCache                 // ring / LLC
	SystemAgent              // uncore system agent
	AnalogIO                 // analog I/O
	DigitalIO                // digital I/O
)

// NumPlanes is the number of voltage planes addressable through the register.
const NumPlanes = 6

var planeKeys = [NumPlanes]string{
	"cpu_core_voltage_offset",
	"intel_gpu_voltage_offset",
	"cpu_cache_voltage_offset",
	"system_agent_voltage_offset",
	"analog_io_voltage_offset",
	"digital_io_voltage_offset",
}

var planeNames = [NumPlanes]string{
	"CPU core",
	"Intel GPU",
	"CPU cache",
	"system agent",
	"analog I/O",
	"digital I/O",
}

// Planes returns every plane in index order.
func Planes() []Plane {
	return []Plane{CPUCore, IntelGPU, CPUCache, SystemAgent, AnalogIO, DigitalIO}
}

// Valid reports whether p is one of the six known planes.
func (p Plane) Valid() bool { return p >= 0 && p < NumPlanes }

// Index returns the plane index used in register commands.
func (p Plane) Index() int { return int(p) }

// Key returns the configuration key naming p.
func (p Plane) Key() string {
	if !p.Valid() {
		return ""
	}
	return planeKeys[p]
}

func (p Plane) String() string {
	if !p.Valid() {
		return fmt.Sprintf("plane(%d)", int(p))
	}
	return planeNames[p]
}

// MatchKey finds the plane whose configuration key is contained in key.
// Candidates are tried in index order and the first hit wins, so a key that
// mentions two plane names resolves to the lower index.
func MatchKey(key string) (Plane, bool) {
	for _, p := range Planes() {
		if strings.Contains(key, p.Key()) {
			return p, true
		}
	}
	return 0, false
}
