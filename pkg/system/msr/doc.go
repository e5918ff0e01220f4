// Package msr talks to the Intel voltage-offset mailbox (MSR 0x150) through
// the msr-tools utilities wrmsr and rdmsr.
//
// Overview
//
//   - Command: a typed 64-bit mailbox value. NewWrite carries an encoded
//     offset in the low 32 bits, NewReadSelect carries none and makes the
//     next rdmsr return the plane's current offset. Hex renders the fixed
//     width argument passed to wrmsr:
//
//     0x8000 0 P 1 K XXXXXXXX
//     |      | | | | +-- offset payload (types.Offset)
//     |      | | | +---- kind: 1 write, 0 read-select
//     |      | | +------ constant
//     |      | +-------- plane index 0..5
//     +------+---------- run bit
//
//   - Runner: executes one process and waits for it with its output drained.
//     ExecRunner enforces a per-invocation timeout (DefaultTimeout unless set)
//     and reports ErrTimeout or ErrToolNotFound; a non-zero exit is returned
//     in Result.ExitCode for the caller to classify.
//
//   - Tool: Write, Select and Read on top of a Runner, classifying failures as
//     ErrWritePermission, ErrReadSelect, ErrReadPermission and
//     ErrMalformedRead (errs.go).
//
// Example: write and verify one plane
//
//	/*
//	tool := msr.NewTool(msr.NewExecRunner(5 * time.Second))
//	off, _ := types.Encode(-80)
//	w, _ := msr.NewWrite(voltage.CPUCore, off)
//	sel, _ := msr.NewReadSelect(voltage.CPUCore)
//	if err := tool.Write(ctx, w); err != nil { return err }
//	if err := tool.Select(ctx, sel); err != nil { return err }
//	got, err := tool.Read(ctx)
//	if err != nil { return err }
//	fmt.Println(got == off)
//	*/
//
// Permissions
//
// wrmsr and rdmsr need root and the msr kernel module (/dev/cpu/*/msr); see
// pkg/system/host for the checks run before any command is issued.
package msr
