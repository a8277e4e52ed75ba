package rpc

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/marketplace/chain"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/metrics"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
)

const (
	metricsStructName = "chain.rpc.provider"
)

type provider struct {
	log        *logrus.Entry
	client     solana.Client
	commitment solana.Commitment
}

// New returns a chain.Provider reading accounts over Solana JSON-RPC.
func New(client solana.Client, commitment solana.Commitment) chain.Provider {
	return &provider{
		log:        logrus.StandardLogger().WithField("type", "marketplace/chain/rpc"),
		client:     client,
		commitment: commitment,
	}
}

func (p *provider) GetAccountInfo(ctx context.Context, address ed25519.PublicKey) (solana.AccountInfo, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetAccountInfo")
	defer tracer.End()

	account := base58.Encode(address)
	tracer.AddAttribute("account", account)

	log := p.log.WithFields(logrus.Fields{
		"method":  "GetAccountInfo",
		"account": account,
	})

	if err := ctx.Err(); err != nil {
		return solana.AccountInfo{}, err
	}

	info, err := p.client.GetAccountInfo(ctx, address, p.commitment)
	if err == solana.ErrNoAccountInfo {
		log.Trace("account not found")
		return solana.AccountInfo{}, chain.ErrAccountNotFound
	} else if err != nil {
		log.WithError(err).Debug("failure getting account info")
		tracer.OnError(err)
		return solana.AccountInfo{}, err
	}

	return info, nil
}
