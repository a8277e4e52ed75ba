package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"sort"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	// MaxTransactionSize taken from: https://github.com/solana-labs/solana/blob/39b3ac6a8d29e14faa1de73d8b46d390ad41797b/sdk/src/packet.rs#L9-L13
	MaxTransactionSize = 1232
)

type Signature [ed25519.SignatureSize]byte
type Blockhash [sha256.Size]byte

// String returns the base58 encoding of the blockhash.
func (b Blockhash) String() string {
	return base58.Encode(b[:])
}

type MessageVersion uint8

const (
	MessageVersionLegacy MessageVersion = iota
	MessageVersion0
)

type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

type MessageAddressTableLookup struct {
	PublicKey       ed25519.PublicKey
	WritableIndexes []byte
	ReadonlyIndexes []byte
}

type Message struct {
	version             MessageVersion
	Header              Header
	Accounts            []ed25519.PublicKey
	RecentBlockhash     Blockhash
	Instructions        []CompiledInstruction
	AddressTableLookups []MessageAddressTableLookup
}

// Version returns the wire version of the message. Messages only become v0
// when at least one account was resolved through an address lookup table.
func (m Message) Version() MessageVersion {
	return m.version
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction compiles a legacy transaction.
func NewTransaction(payer ed25519.PublicKey, instructions ...Instruction) Transaction {
	return NewVersionedTransaction(payer, nil, instructions)
}

// NewVersionedTransaction compiles a transaction that may load accounts
// dynamically from the provided address lookup tables. Payer, signer and
// program accounts are always kept in the static account list.
func NewVersionedTransaction(payer ed25519.PublicKey, addressLookupTables []AddressLookupTable, instructions []Instruction) Transaction {
	accounts := []AccountMeta{
		{
			PublicKey:  payer,
			IsSigner:   true,
			IsWritable: true,
			isPayer:    true,
		},
	}
	for _, i := range instructions {
		accounts = append(accounts, AccountMeta{
			PublicKey: i.Program,
			isProgram: true,
		})
		accounts = append(accounts, i.Accounts...)
	}

	// Sort the account meta's based on:
	//   1. Payer is always the first account / signer.
	//   2. All signers are before non-signers.
	//   3. Writable accounts before read-only accounts.
	//   4. Programs last
	accounts = filterUnique(accounts)
	sort.Sort(SortableAccountMeta(accounts))

	tables := make([]AddressLookupTable, len(addressLookupTables))
	copy(tables, addressLookupTables)
	sort.Sort(SortableAddressLookupTables(tables))

	writable := make([][]byte, len(tables))
	readonly := make([][]byte, len(tables))

	var m Message
	for _, account := range accounts {
		if table, index, ok := lookupDynamic(tables, account); ok {
			if account.IsWritable {
				writable[table] = append(writable[table], index)
			} else {
				readonly[table] = append(readonly[table], index)
			}
			continue
		}

		m.Accounts = append(m.Accounts, account.PublicKey)

		if account.IsSigner {
			m.Header.NumSignatures++

			if !account.IsWritable {
				m.Header.NumReadonlySigned++
			}
		} else if !account.IsWritable {
			m.Header.NumReadOnly++
		}
	}

	// Index references are resolved against static accounts, followed by all
	// writable table accounts, followed by all readonly table accounts.
	allAccounts := append([]ed25519.PublicKey{}, m.Accounts...)
	for i := range tables {
		for _, index := range writable[i] {
			allAccounts = append(allAccounts, tables[i].Addresses[index])
		}
	}
	for i := range tables {
		for _, index := range readonly[i] {
			allAccounts = append(allAccounts, tables[i].Addresses[index])
		}
	}

	for _, i := range instructions {
		c := CompiledInstruction{
			ProgramIndex: byte(indexOf(allAccounts, i.Program)),
			Data:         i.Data,
		}
		for _, a := range i.Accounts {
			c.Accounts = append(c.Accounts, byte(indexOf(allAccounts, a.PublicKey)))
		}
		m.Instructions = append(m.Instructions, c)
	}

	for i, table := range tables {
		if len(writable[i]) == 0 && len(readonly[i]) == 0 {
			continue
		}

		m.AddressTableLookups = append(m.AddressTableLookups, MessageAddressTableLookup{
			PublicKey:       table.PublicKey,
			WritableIndexes: writable[i],
			ReadonlyIndexes: readonly[i],
		})
	}
	if len(m.AddressTableLookups) > 0 {
		m.version = MessageVersion0
	}

	for i := range m.Accounts {
		if len(m.Accounts[i]) == 0 {
			m.Accounts[i] = make([]byte, ed25519.PublicKeySize)
		}
	}

	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

// lookupDynamic finds the first table containing the account, provided the
// account is eligible to be loaded from a table at all.
func lookupDynamic(tables []AddressLookupTable, account AccountMeta) (int, byte, bool) {
	if account.isPayer || account.IsSigner || account.isProgram {
		return 0, 0, false
	}

	for i, table := range tables {
		for j, address := range table.Addresses {
			if bytes.Equal(address, account.PublicKey) {
				return i, byte(j), true
			}
		}
	}
	return 0, 0, false
}

func (t *Transaction) Signature() []byte {
	return t.Signatures[0][:]
}

func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
}

func (t *Transaction) Sign(signers ...ed25519.PrivateKey) error {
	messageBytes := t.Message.Marshal()

	for _, s := range signers {
		pub := s.Public().(ed25519.PublicKey)
		index := indexOf(t.Message.Accounts, pub)
		if index < 0 {
			return errors.Errorf("signing account %s is not in the account list", base58.Encode(pub))
		}
		if index >= len(t.Signatures) {
			return errors.Errorf("signing account %s is not in the list of signers", base58.Encode(pub))
		}

		copy(t.Signatures[index][:], ed25519.Sign(s, messageBytes))
	}

	return nil
}

func filterUnique(accounts []AccountMeta) []AccountMeta {
	filtered := make([]AccountMeta, 0, len(accounts))

	for i := range accounts {
		seen := false
		for j := range filtered {
			if !bytes.Equal(accounts[i].PublicKey, filtered[j].PublicKey) {
				continue
			}

			// Promote permissions for accounts referenced more than once.
			filtered[j].IsSigner = filtered[j].IsSigner || accounts[i].IsSigner
			filtered[j].IsWritable = filtered[j].IsWritable || accounts[i].IsWritable
			filtered[j].isPayer = filtered[j].isPayer || accounts[i].isPayer
			seen = true
			break
		}

		if !seen {
			filtered = append(filtered, accounts[i])
		}
	}

	return filtered
}

func indexOf(slice []ed25519.PublicKey, item ed25519.PublicKey) int {
	for i, val := range slice {
		if bytes.Equal(val, item) {
			return i
		}
	}

	return -1
}

func (v MessageVersion) String() string {
	switch v {
	case MessageVersionLegacy:
		return "legacy"
	case MessageVersion0:
		return "v0"
	}
	return "unknown"
}
