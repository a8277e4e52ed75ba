package memory

import (
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/mr-tron/base58"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/marketplace/chain"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
)

// Provider is an in-memory chain.Provider that counts every read.
type Provider struct {
	mu       sync.Mutex
	accounts map[string]solana.AccountInfo
	calls    map[string]int
	total    int
}

func New() *Provider {
	return &Provider{
		accounts: make(map[string]solana.AccountInfo),
		calls:    make(map[string]int),
	}
}

func (p *Provider) GetAccountInfo(ctx context.Context, address ed25519.PublicKey) (solana.AccountInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := base58.Encode(address)
	p.calls[key]++
	p.total++

	if err := ctx.Err(); err != nil {
		return solana.AccountInfo{}, err
	}

	info, ok := p.accounts[key]
	if !ok {
		return solana.AccountInfo{}, chain.ErrAccountNotFound
	}
	return cloneAccountInfo(info), nil
}

// Put stores or replaces the account at the address.
func (p *Provider) Put(address ed25519.PublicKey, info solana.AccountInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.accounts[base58.Encode(address)] = cloneAccountInfo(info)
}

func (p *Provider) Delete(address ed25519.PublicKey) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.accounts, base58.Encode(address))
}

// Calls returns the number of reads of the address.
func (p *Provider) Calls(address ed25519.PublicKey) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.calls[base58.Encode(address)]
}

// TotalCalls returns the number of reads across all addresses.
func (p *Provider) TotalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.total
}

func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.accounts = make(map[string]solana.AccountInfo)
	p.calls = make(map[string]int)
	p.total = 0
}

func cloneAccountInfo(info solana.AccountInfo) solana.AccountInfo {
	clone := info
	clone.Data = append([]byte(nil), info.Data...)
	clone.Owner = append(ed25519.PublicKey(nil), info.Owner...)
	return clone
}
