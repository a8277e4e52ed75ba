package tokenmetadata

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"
)

var (
	ErrInvalidAccountType = errors.New("account is not a metadata account")
)

// KeyMetadataV1 is the account discriminator of metadata accounts.
const KeyMetadataV1 uint8 = 4

// TokenStandard classifies how an asset may be transferred.
type TokenStandard uint8

const (
	TokenStandardNonFungible TokenStandard = iota
	TokenStandardFungibleAsset
	TokenStandardFungible
	TokenStandardNonFungibleEdition
	TokenStandardProgrammableNonFungible
	TokenStandardProgrammableNonFungibleEdition
)

func (s TokenStandard) String() string {
	switch s {
	case TokenStandardNonFungible:
		return "non_fungible"
	case TokenStandardFungibleAsset:
		return "fungible_asset"
	case TokenStandardFungible:
		return "fungible"
	case TokenStandardNonFungibleEdition:
		return "non_fungible_edition"
	case TokenStandardProgrammableNonFungible:
		return "programmable_non_fungible"
	case TokenStandardProgrammableNonFungibleEdition:
		return "programmable_non_fungible_edition"
	}
	return "unknown"
}

// IsProgrammable reports whether transfers of the asset are gated by the
// token authorization rules program.
func (s TokenStandard) IsProgrammable() bool {
	return s == TokenStandardProgrammableNonFungible || s == TokenStandardProgrammableNonFungibleEdition
}

type Creator struct {
	Address  ed25519.PublicKey
	Verified bool
	Share    uint8
}

type Collection struct {
	Verified bool
	Key      ed25519.PublicKey
}

type Uses struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

type CollectionDetails struct {
	Version uint8
	Size    uint64
}

type ProgrammableConfig struct {
	Version uint8
	RuleSet ed25519.PublicKey
}

// Metadata is the decoded form of a token metadata account.
//
// Reference: https://github.com/metaplex-foundation/mpl-token-metadata/blob/main/programs/token-metadata/program/src/state/metadata.rs
type Metadata struct {
	Key                  uint8
	UpdateAuthority      ed25519.PublicKey
	Mint                 ed25519.PublicKey
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
	PrimarySaleHappened  bool
	IsMutable            bool

	// Fields added by later program versions. Older accounts may end before
	// any of them, in which case they stay nil.
	EditionNonce       *uint8
	TokenStandard      *TokenStandard
	Collection         *Collection
	Uses               *Uses
	CollectionDetails  *CollectionDetails
	ProgrammableConfig *ProgrammableConfig
}

// Standard returns the token standard, treating a missing value as a
// regular non-fungible asset.
func (m *Metadata) Standard() TokenStandard {
	if m.TokenStandard == nil {
		return TokenStandardNonFungible
	}
	return *m.TokenStandard
}

// IsProgrammable reports whether the asset is a programmable NFT.
func (m *Metadata) IsProgrammable() bool {
	return m.TokenStandard != nil && m.TokenStandard.IsProgrammable()
}

// RuleSet returns the authorization rule set of a programmable asset, or nil.
func (m *Metadata) RuleSet() ed25519.PublicKey {
	if m.ProgrammableConfig == nil {
		return nil
	}
	return m.ProgrammableConfig.RuleSet
}

func (m *Metadata) Unmarshal(data []byte) error {
	dec := bin.NewBorshDecoder(data)

	var err error
	if m.Key, err = dec.ReadUint8(); err != nil {
		return errors.Wrap(err, "failed to read key")
	}
	if m.Key != KeyMetadataV1 {
		return ErrInvalidAccountType
	}
	if m.UpdateAuthority, err = readKey(dec); err != nil {
		return errors.Wrap(err, "failed to read update authority")
	}
	if m.Mint, err = readKey(dec); err != nil {
		return errors.Wrap(err, "failed to read mint")
	}
	if m.Name, err = readString(dec); err != nil {
		return errors.Wrap(err, "failed to read name")
	}
	if m.Symbol, err = readString(dec); err != nil {
		return errors.Wrap(err, "failed to read symbol")
	}
	if m.URI, err = readString(dec); err != nil {
		return errors.Wrap(err, "failed to read uri")
	}
	if m.SellerFeeBasisPoints, err = dec.ReadUint16(binary.LittleEndian); err != nil {
		return errors.Wrap(err, "failed to read seller fee basis points")
	}
	if err = m.readCreators(dec); err != nil {
		return errors.Wrap(err, "failed to read creators")
	}
	if m.PrimarySaleHappened, err = dec.ReadBool(); err != nil {
		return errors.Wrap(err, "failed to read primary sale happened")
	}
	if m.IsMutable, err = dec.ReadBool(); err != nil {
		return errors.Wrap(err, "failed to read is mutable")
	}

	trailing := []struct {
		name string
		read func(*bin.Decoder) error
	}{
		{"edition nonce", m.readEditionNonce},
		{"token standard", m.readTokenStandard},
		{"collection", m.readCollection},
		{"uses", m.readUses},
		{"collection details", m.readCollectionDetails},
		{"programmable config", m.readProgrammableConfig},
	}
	for _, field := range trailing {
		if dec.Remaining() == 0 {
			return nil
		}
		if err := field.read(dec); err != nil {
			return errors.Wrapf(err, "failed to read %s", field.name)
		}
	}

	return nil
}

// creatorSize is the encoded size of a Creator: address, verified and share.
const creatorSize = ed25519.PublicKeySize + 1 + 1

func (m *Metadata) readCreators(dec *bin.Decoder) error {
	present, err := readOption(dec)
	if err != nil || !present {
		return err
	}

	count, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return err
	}

	if uint64(count) > uint64(dec.Remaining()/creatorSize) {
		return errors.Errorf("creator count %d exceeds remaining %d bytes", count, dec.Remaining())
	}

	m.Creators = make([]Creator, 0, count)
	for i := uint32(0); i < count; i++ {
		var c Creator
		if c.Address, err = readKey(dec); err != nil {
			return err
		}
		if c.Verified, err = dec.ReadBool(); err != nil {
			return err
		}
		if c.Share, err = dec.ReadUint8(); err != nil {
			return err
		}
		m.Creators = append(m.Creators, c)
	}
	return nil
}

func (m *Metadata) readEditionNonce(dec *bin.Decoder) error {
	present, err := readOption(dec)
	if err != nil || !present {
		return err
	}

	nonce, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	m.EditionNonce = &nonce
	return nil
}

func (m *Metadata) readTokenStandard(dec *bin.Decoder) error {
	present, err := readOption(dec)
	if err != nil || !present {
		return err
	}

	raw, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	standard := TokenStandard(raw)
	m.TokenStandard = &standard
	return nil
}

func (m *Metadata) readCollection(dec *bin.Decoder) error {
	present, err := readOption(dec)
	if err != nil || !present {
		return err
	}

	var c Collection
	if c.Verified, err = dec.ReadBool(); err != nil {
		return err
	}
	if c.Key, err = readKey(dec); err != nil {
		return err
	}
	m.Collection = &c
	return nil
}

func (m *Metadata) readUses(dec *bin.Decoder) error {
	present, err := readOption(dec)
	if err != nil || !present {
		return err
	}

	var u Uses
	if u.UseMethod, err = dec.ReadUint8(); err != nil {
		return err
	}
	if u.Remaining, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if u.Total, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	m.Uses = &u
	return nil
}

func (m *Metadata) readCollectionDetails(dec *bin.Decoder) error {
	present, err := readOption(dec)
	if err != nil || !present {
		return err
	}

	var d CollectionDetails
	if d.Version, err = dec.ReadUint8(); err != nil {
		return err
	}
	if d.Size, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	m.CollectionDetails = &d
	return nil
}

func (m *Metadata) readProgrammableConfig(dec *bin.Decoder) error {
	present, err := readOption(dec)
	if err != nil || !present {
		return err
	}

	var c ProgrammableConfig
	if c.Version, err = dec.ReadUint8(); err != nil {
		return err
	}
	hasRuleSet, err := readOption(dec)
	if err != nil {
		return err
	}
	if hasRuleSet {
		if c.RuleSet, err = readKey(dec); err != nil {
			return err
		}
	}
	m.ProgrammableConfig = &c
	return nil
}

// Marshal encodes the metadata in the on-chain account layout.
func (m *Metadata) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)

	write := func(fns ...func() error) error {
		for _, fn := range fns {
			if err := fn(); err != nil {
				return err
			}
		}
		return nil
	}
	writeOption := func(present bool, body func() error) error {
		if !present {
			return enc.WriteBool(false)
		}
		if err := enc.WriteBool(true); err != nil {
			return err
		}
		return body()
	}
	writeKey := func(key ed25519.PublicKey) func() error {
		return func() error {
			if len(key) != ed25519.PublicKeySize {
				return errors.Errorf("invalid key length %d", len(key))
			}
			return enc.WriteBytes(key, false)
		}
	}
	writeString := func(value string) func() error {
		return func() error {
			if err := enc.WriteUint32(uint32(len(value)), binary.LittleEndian); err != nil {
				return err
			}
			return enc.WriteBytes([]byte(value), false)
		}
	}

	err := write(
		func() error { return enc.WriteUint8(m.Key) },
		writeKey(m.UpdateAuthority),
		writeKey(m.Mint),
		writeString(m.Name),
		writeString(m.Symbol),
		writeString(m.URI),
		func() error { return enc.WriteUint16(m.SellerFeeBasisPoints, binary.LittleEndian) },
		func() error {
			return writeOption(m.Creators != nil, func() error {
				if err := enc.WriteUint32(uint32(len(m.Creators)), binary.LittleEndian); err != nil {
					return err
				}
				for _, c := range m.Creators {
					if err := write(
						writeKey(c.Address),
						func() error { return enc.WriteBool(c.Verified) },
						func() error { return enc.WriteUint8(c.Share) },
					); err != nil {
						return err
					}
				}
				return nil
			})
		},
		func() error { return enc.WriteBool(m.PrimarySaleHappened) },
		func() error { return enc.WriteBool(m.IsMutable) },
		func() error {
			return writeOption(m.EditionNonce != nil, func() error { return enc.WriteUint8(*m.EditionNonce) })
		},
		func() error {
			return writeOption(m.TokenStandard != nil, func() error { return enc.WriteUint8(uint8(*m.TokenStandard)) })
		},
		func() error {
			return writeOption(m.Collection != nil, func() error {
				return write(
					func() error { return enc.WriteBool(m.Collection.Verified) },
					writeKey(m.Collection.Key),
				)
			})
		},
		func() error {
			return writeOption(m.Uses != nil, func() error {
				return write(
					func() error { return enc.WriteUint8(m.Uses.UseMethod) },
					func() error { return enc.WriteUint64(m.Uses.Remaining, binary.LittleEndian) },
					func() error { return enc.WriteUint64(m.Uses.Total, binary.LittleEndian) },
				)
			})
		},
		func() error {
			return writeOption(m.CollectionDetails != nil, func() error {
				return write(
					func() error { return enc.WriteUint8(m.CollectionDetails.Version) },
					func() error { return enc.WriteUint64(m.CollectionDetails.Size, binary.LittleEndian) },
				)
			})
		},
		func() error {
			return writeOption(m.ProgrammableConfig != nil, func() error {
				return write(
					func() error { return enc.WriteUint8(m.ProgrammableConfig.Version) },
					func() error {
						return writeOption(m.ProgrammableConfig.RuleSet != nil, writeKey(m.ProgrammableConfig.RuleSet))
					},
				)
			})
		},
	)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func readOption(dec *bin.Decoder) (bool, error) {
	flag, err := dec.ReadUint8()
	if err != nil {
		return false, err
	}
	switch flag {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, errors.Errorf("invalid option flag %d", flag)
}

func readKey(dec *bin.Decoder) (ed25519.PublicKey, error) {
	raw, err := dec.ReadNBytes(ed25519.PublicKeySize)
	if err != nil {
		return nil, err
	}
	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(key, raw)
	return key, nil
}

// readString reads a u32 length prefixed string. Metadata strings are
// padded with NUL bytes on chain, which are stripped.
func readString(dec *bin.Decoder) (string, error) {
	size, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return "", err
	}
	if int(size) > dec.Remaining() {
		return "", errors.Errorf("string length %d exceeds remaining %d bytes", size, dec.Remaining())
	}
	raw, err := dec.ReadNBytes(int(size))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(raw), "\x00"), nil
}
