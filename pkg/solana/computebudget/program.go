package compute_budget

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
)

// ComputeBudget111111111111111111111111111111
var ProgramKey = ed25519.PublicKey{3, 6, 70, 111, 229, 33, 23, 50, 255, 236, 173, 186, 114, 195, 155, 231, 188, 140, 229, 187, 197, 247, 18, 107, 44, 67, 155, 58, 64, 0, 0, 0}

const (
	commandRequestUnits uint8 = iota
	commandRequestHeapFrame
	commandSetComputeUnitLimit
	commandSetComputeUnitPrice
)

// SetComputeUnitLimit caps the compute units the transaction may consume.
func SetComputeUnitLimit(computeUnitLimit uint32) solana.Instruction {
	data := make([]byte, 1+4)
	data[0] = commandSetComputeUnitLimit
	binary.LittleEndian.PutUint32(data[1:], computeUnitLimit)

	return solana.NewInstruction(ProgramKey, data)
}

// SetComputeUnitPrice sets the priority fee, in micro-lamports per compute unit.
func SetComputeUnitPrice(computeUnitPrice uint64) solana.Instruction {
	data := make([]byte, 1+8)
	data[0] = commandSetComputeUnitPrice
	binary.LittleEndian.PutUint64(data[1:], computeUnitPrice)

	return solana.NewInstruction(ProgramKey, data)
}

// ParseSetComputeUnitLimit extracts the limit from a SetComputeUnitLimit
// instruction.
func ParseSetComputeUnitLimit(ixn solana.Instruction) (uint32, error) {
	if err := checkCommand(ixn, commandSetComputeUnitLimit, 5); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(ixn.Data[1:]), nil
}

// ParseSetComputeUnitPrice extracts the price from a SetComputeUnitPrice
// instruction.
func ParseSetComputeUnitPrice(ixn solana.Instruction) (uint64, error) {
	if err := checkCommand(ixn, commandSetComputeUnitPrice, 9); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(ixn.Data[1:]), nil
}

func checkCommand(ixn solana.Instruction, command uint8, size int) error {
	if !bytes.Equal(ixn.Program, ProgramKey) {
		return errors.New("not a compute budget instruction")
	}
	if len(ixn.Data) != size {
		return errors.Errorf("invalid length %d (expected %d)", len(ixn.Data), size)
	}
	if ixn.Data[0] != command {
		return errors.Errorf("unexpected command %d (expected %d)", ixn.Data[0], command)
	}
	return nil
}
