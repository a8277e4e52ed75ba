package solana

import (
	"bytes"
	"encoding/base64"

	"github.com/mr-tron/base58"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/shortvec"
)

// String returns the base58 encoding of the signature.
func (s Signature) String() string {
	return base58.Encode(s[:])
}

func (t Transaction) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	// Signatures
	_, _ = shortvec.EncodeLen(b, len(t.Signatures))
	for _, s := range t.Signatures {
		_, _ = b.Write(s[:])
	}

	// Message
	_, _ = b.Write(t.Message.Marshal())

	return b.Bytes()
}

// ToBase64 returns the wire encoding of the transaction as expected by the
// sendTransaction RPC method.
func (t Transaction) ToBase64() string {
	return base64.StdEncoding.EncodeToString(t.Marshal())
}

func (m Message) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	switch m.version {
	case MessageVersionLegacy:
	case MessageVersion0:
		_ = b.WriteByte(byte(m.version + 127))
	default:
		panic("unsupported message version")
	}

	// Header
	_ = b.WriteByte(m.Header.NumSignatures)
	_ = b.WriteByte(m.Header.NumReadonlySigned)
	_ = b.WriteByte(m.Header.NumReadOnly)

	// Accounts
	_, _ = shortvec.EncodeLen(b, len(m.Accounts))
	for _, a := range m.Accounts {
		_, _ = b.Write(a)
	}

	// Recent Blockhash
	_, _ = b.Write(m.RecentBlockhash[:])

	// Instructions
	_, _ = shortvec.EncodeLen(b, len(m.Instructions))
	for _, i := range m.Instructions {
		_ = b.WriteByte(i.ProgramIndex)

		_, _ = shortvec.EncodeLen(b, len(i.Accounts))
		_, _ = b.Write(i.Accounts)

		_, _ = shortvec.EncodeLen(b, len(i.Data))
		_, _ = b.Write(i.Data)
	}

	if m.version == MessageVersionLegacy {
		return b.Bytes()
	}

	_, _ = shortvec.EncodeLen(b, len(m.AddressTableLookups))
	for _, lookup := range m.AddressTableLookups {
		_, _ = b.Write(lookup.PublicKey)

		_, _ = shortvec.EncodeLen(b, len(lookup.WritableIndexes))
		_, _ = b.Write(lookup.WritableIndexes)

		_, _ = shortvec.EncodeLen(b, len(lookup.ReadonlyIndexes))
		_, _ = b.Write(lookup.ReadonlyIndexes)
	}

	return b.Bytes()
}
