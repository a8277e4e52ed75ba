package marketplace

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
)

// Action is the result of every marketplace action. Callers must check Err
// before using Instructions; a failed action carries no instructions.
type Action struct {
	Instructions []solana.Instruction

	// AddressLookupTables compress the accounts of large actions when the
	// configured table could be resolved.
	AddressLookupTables []solana.AddressLookupTable

	Err error
}

func newAction(instructions []solana.Instruction, err error) *Action {
	if err != nil {
		return &Action{Err: err}
	}
	return &Action{Instructions: instructions}
}

// Transaction compiles the action into an unsigned transaction paid for by
// payer. The message is v0 when lookup tables are attached.
func (a *Action) Transaction(payer ed25519.PublicKey, blockhash solana.Blockhash) (solana.Transaction, error) {
	if a.Err != nil {
		return solana.Transaction{}, errors.Wrap(a.Err, "cannot compile failed action")
	}
	if len(a.Instructions) == 0 {
		return solana.Transaction{}, errors.New("action has no instructions")
	}

	txn := solana.NewVersionedTransaction(payer, a.AddressLookupTables, a.Instructions)
	txn.SetBlockhash(blockhash)
	return txn, nil
}
