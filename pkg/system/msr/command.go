package msr

import (
	"fmt"

	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/types"
	"github.com/intel-msr-voltages/intel-msr-voltages/pkg/voltage"
)

// Register is the voltage-offset mailbox MSR.
const Register = 0x150

// RegisterHex is Register as passed to wrmsr/rdmsr.
const RegisterHex = "0x150"

// Kind selects what the mailbox does with a command.
type Kind uint8

const (
	KindReadSelect Kind = 0 // latch the plane's offset for the next rdmsr
	KindWrite      Kind = 1 // apply the payload as the plane's offset
)

func (k Kind) String() string {
	switch k {
	case KindWrite:
		return "write"
	case KindReadSelect:
		return "read-select"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Mailbox command layout, most significant bit first:
//
//	63     busy / run bit, always set
//	40-43  plane index
//	36-39  constant 1
//	32-35  command kind
//	0-31   offset payload
const (
	busyBit    = uint64(1) << 63
	planeShift = 40
	fixedBits  = uint64(1) << 36
	kindShift  = 32
)

// Command is a single 64-bit value written to Register.
type Command struct {
	Plane   voltage.Plane
	Kind    Kind
	Payload types.Offset
}

// NewWrite builds the command that sets plane's offset.
func NewWrite(plane voltage.Plane, offset types.Offset) (Command, error) {
	c := Command{Plane: plane, Kind: KindWrite, Payload: offset}
	return c, c.Validate()
}

// NewReadSelect builds the command that makes the next rdmsr return plane's
// current offset.
func NewReadSelect(plane voltage.Plane) (Command, error) {
	c := Command{Plane: plane, Kind: KindReadSelect}
	return c, c.Validate()
}

// Validate checks that the command can be encoded.
func (c Command) Validate() error {
	if !c.Plane.Valid() {
		return fmt.Errorf("%w: invalid voltage plane index %d", types.ErrEncoding, int(c.Plane))
	}
	if c.Kind != KindWrite && c.Kind != KindReadSelect {
		return fmt.Errorf("%w: invalid command kind %d", types.ErrEncoding, uint8(c.Kind))
	}
	if c.Kind == KindReadSelect && c.Payload != 0 {
		return fmt.Errorf("%w: read-select carries no payload", types.ErrEncoding)
	}
	return nil
}

// Value returns the 64-bit register value.
func (c Command) Value() uint64 {
	return busyBit |
		uint64(c.Plane)<<planeShift |
		fixedBits |
		uint64(c.Kind)<<kindShift |
		uint64(uint32(c.Payload))
}

// Hex returns Value as the fixed-width argument wrmsr expects, e.g.
// 0x80000011f5c00000.
func (c Command) Hex() string { return fmt.Sprintf("0x%016x", c.Value()) }

func (c Command) String() string {
	return fmt.Sprintf("%s plane %d: wrmsr %s %s", c.Kind, c.Plane.Index(), RegisterHex, c.Hex())
}
