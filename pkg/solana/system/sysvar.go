package system

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// ProgramKey is the system program.
//
// https://explorer.solana.com/address/11111111111111111111111111111111
var ProgramKey = make(ed25519.PublicKey, ed25519.PublicKeySize)

// RentSysVar points to the system variable "Rent"
//
// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/sysvar/rent.rs#L11
var RentSysVar ed25519.PublicKey

// InstructionsSysVar points to the system variable holding the serialized
// instructions of the executing transaction. Programmable NFT transfers
// inspect it to enforce rule sets.
//
// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/sysvar/instructions.rs
var InstructionsSysVar ed25519.PublicKey

func init() {
	RentSysVar = mustBase58Decode("SysvarRent111111111111111111111111111111111")
	InstructionsSysVar = mustBase58Decode("Sysvar1nstructions1111111111111111111111111")
}

func mustBase58Decode(value string) ed25519.PublicKey {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
