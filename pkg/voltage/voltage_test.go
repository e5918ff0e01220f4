package voltage

import (
	"testing"

	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlane_IndicesAreStable(t *testing.T) {
	want := map[Plane]int{CPUCore: 0, IntelGPU: 1, CPUCache: 2, SystemAgent: 3, AnalogIO: 4, DigitalIO: 5}
	for p, idx := range want {
		assert.Equal(t, idx, p.Index(), p.String())
	}
	require.Len(t, Planes(), NumPlanes)
	for i, p := range Planes() {
		assert.Equal(t, i, p.Index())
		assert.True(t, p.Valid())
	}
	assert.False(t, Plane(-1).Valid())
	assert.False(t, Plane(NumPlanes).Valid())
	assert.Equal(t, "plane(7)", Plane(7).String())
	assert.Equal(t, "", Plane(7).Key())
}

func TestMatchKey(t *testing.T) {
	cases := []struct {
		key  string
		want Plane
		ok   bool
	}{
		{"cpu_core_voltage_offset", CPUCore, true},
		{"  intel_gpu_voltage_offset ", IntelGPU, true},
		{"cpu_cache_voltage_offset", CPUCache, true},
		{"my_system_agent_voltage_offset_value", SystemAgent, true},
		{"analog_io_voltage_offset", AnalogIO, true},
		{"digital_io_voltage_offset", DigitalIO, true},
		// mentions two planes: the lower index wins
		{"digital_io_voltage_offset+cpu_core_voltage_offset", CPUCore, true},
		{"cpu_cache_voltage_offset/intel_gpu_voltage_offset", IntelGPU, true},
		{"CPU_CORE_VOLTAGE_OFFSET", 0, false},
		{"bogus_key", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			got, ok := MatchKey(tc.key)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestSetting_ZeroValueIsUnset(t *testing.T) {
	var s Setting
	assert.True(t, s.Empty())
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Configured())
	for _, p := range Planes() {
		_, ok := s.Get(p)
		assert.False(t, ok)
	}
}

func TestSetting_ZeroAndNegativeAreSet(t *testing.T) {
	var s Setting
	s.Set(CPUCache, 0)
	s.Set(SystemAgent, -50)

	v, ok := s.Get(CPUCache)
	require.True(t, ok)
	assert.Equal(t, types.Millivolts(0), v)

	v, ok = s.Get(SystemAgent)
	require.True(t, ok)
	assert.Equal(t, types.Millivolts(-50), v)

	assert.Equal(t, []Plane{CPUCache, SystemAgent}, s.Configured())
	assert.False(t, s.IsSet(CPUCore))
}

func TestSetting_LastSetWins(t *testing.T) {
	var s Setting
	s.Set(CPUCore, -80)
	s.Set(CPUCore, -100)
	v, _ := s.Get(CPUCore)
	assert.Equal(t, types.Millivolts(-100), v)
	assert.Equal(t, 1, s.Len())

	s.Set(Plane(9), 10)
	assert.Equal(t, []Plane{CPUCore}, s.Configured())
}

func TestSetting_CopyIsIndependent(t *testing.T) {
	var s Setting
	s.Set(AnalogIO, 5)
	c := s
	s.Set(AnalogIO, 10)
	v, _ := c.Get(AnalogIO)
	assert.Equal(t, types.Millivolts(5), v)
}
