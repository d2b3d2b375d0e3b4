package dex

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

// DiscriminatorLen is the Anchor account and instruction prefix length.
const DiscriminatorLen = 8

// DecodeLayout checks data against a fixed layout size and Borsh-decodes
// data[:size] into v. Bytes past size are ignored.
func DecodeLayout(account string, data []byte, size int, v interface{}) error {
	if err := types.CheckLayout(account, data, size); err != nil {
		return err
	}
	if err := bin.NewBorshDecoder(data[:size]).Decode(v); err != nil {
		return types.NewSchemaMismatch(account, size, len(data), err)
	}
	return nil
}

// EncodeLayout Borsh-encodes v, the inverse of DecodeLayout.
func EncodeLayout(v interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeInstruction prefixes the Borsh-encoded args with the discriminator.
func EncodeInstruction(discriminator [8]byte, args interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(discriminator[:])
	if err := bin.NewBorshEncoder(buf).Encode(args); err != nil {
		return nil, fmt.Errorf("encode instruction args: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeInstruction checks the discriminator and decodes the args into v.
func DecodeInstruction(name string, discriminator [8]byte, data []byte, v interface{}) error {
	if len(data) < DiscriminatorLen {
		return &types.DecodeError{Account: name, Kind: types.DecodeTooShort, Want: DiscriminatorLen, Got: len(data)}
	}
	if !bytes.Equal(data[:DiscriminatorLen], discriminator[:]) {
		return types.NewSchemaMismatch(name, DiscriminatorLen, len(data), fmt.Errorf("discriminator %x, want %x", data[:DiscriminatorLen], discriminator))
	}
	if err := bin.NewBorshDecoder(data[DiscriminatorLen:]).Decode(v); err != nil {
		return types.NewSchemaMismatch(name, DiscriminatorLen, len(data), err)
	}
	return nil
}

// HasDiscriminator reports whether data starts with discriminator.
func HasDiscriminator(data []byte, discriminator [8]byte) bool {
	return len(data) >= DiscriminatorLen && bytes.Equal(data[:DiscriminatorLen], discriminator[:])
}
