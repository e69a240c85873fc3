// Package calldata encodes and decodes the Market.initiate entry point.
//
// Two forms exist on chain. The legacy form takes no upper bound:
//
//	initiate(uint256 startTime, uint256 duration, uint256 bound1, address registry)
//
// The current form takes both bounds:
//
//	initiate(uint256 startTime, uint256 duration, uint256 bound1, uint256 bound2, address registry)
package calldata

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Method is the entry point name on the Market contract.
const Method = "initiate"

const (
	SignatureLegacy = "initiate(uint256,uint256,uint256,address)"
	SignatureBounds = "initiate(uint256,uint256,uint256,uint256,address)"
)

// SelectorSize is the length of a function selector in bytes.
const SelectorSize = 4

var (
	// ErrUnknownSelector is returned when calldata does not start with an initiate selector.
	ErrUnknownSelector = errors.New("calldata: unknown selector")

	// ErrNegative is returned when a numeric argument is below zero.
	ErrNegative = errors.New("calldata: negative value for uint256")
)

// Initiate holds the arguments of one initiate call.
// Bound2 is nil for the legacy four-argument form.
type Initiate struct {
	StartTime int64
	Duration  int64
	Bound1    int64
	Bound2    *int64
	Registry  common.Address
}

// Signature returns the canonical signature matching the argument count.
func (in Initiate) Signature() string {
	if in.Bound2 == nil {
		return SignatureLegacy
	}
	return SignatureBounds
}

var (
	uint256Type = mustType("uint256")
	addressType = mustType("address")

	legacyArgs = abi.Arguments{
		{Name: "startTime", Type: uint256Type},
		{Name: "duration", Type: uint256Type},
		{Name: "bound1", Type: uint256Type},
		{Name: "registry", Type: addressType},
	}
	boundsArgs = abi.Arguments{
		{Name: "startTime", Type: uint256Type},
		{Name: "duration", Type: uint256Type},
		{Name: "bound1", Type: uint256Type},
		{Name: "bound2", Type: uint256Type},
		{Name: "registry", Type: addressType},
	}

	legacySelector = Selector(SignatureLegacy)
	boundsSelector = Selector(SignatureBounds)
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(fmt.Sprintf("calldata: abi type %s: %v", t, err))
	}
	return typ
}

// Selector returns the first four bytes of keccak256(signature).
func Selector(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:SelectorSize]
}

// Encode packs in as selector || abi-encoded arguments.
func Encode(in Initiate) ([]byte, error) {
	ints := []int64{in.StartTime, in.Duration, in.Bound1}
	if in.Bound2 != nil {
		ints = append(ints, *in.Bound2)
	}

	values := make([]any, 0, len(ints)+1)
	for _, v := range ints {
		if v < 0 {
			return nil, fmt.Errorf("encode %s: %w: %d", in.Signature(), ErrNegative, v)
		}
		values = append(values, big.NewInt(v))
	}
	values = append(values, in.Registry)

	args, selector := legacyArgs, legacySelector
	if in.Bound2 != nil {
		args, selector = boundsArgs, boundsSelector
	}

	packed, err := args.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", in.Signature(), err)
	}

	out := make([]byte, 0, SelectorSize+len(packed))
	out = append(out, selector...)
	return append(out, packed...), nil
}

// Decode parses calldata produced by Encode.
func Decode(data []byte) (Initiate, error) {
	if len(data) < SelectorSize {
		return Initiate{}, fmt.Errorf("decode: %w: %d bytes", ErrUnknownSelector, len(data))
	}

	var args abi.Arguments
	switch sel := data[:SelectorSize]; {
	case bytes.Equal(sel, legacySelector):
		args = legacyArgs
	case bytes.Equal(sel, boundsSelector):
		args = boundsArgs
	default:
		return Initiate{}, fmt.Errorf("decode: %w: %x", ErrUnknownSelector, sel)
	}

	values, err := args.Unpack(data[SelectorSize:])
	if err != nil {
		return Initiate{}, fmt.Errorf("decode %s: %w", Method, err)
	}

	nums := make([]int64, 0, len(values)-1)
	for i, v := range values[:len(values)-1] {
		n, ok := v.(*big.Int)
		if !ok || !n.IsInt64() {
			return Initiate{}, fmt.Errorf("decode %s: argument %d out of range", Method, i)
		}
		nums = append(nums, n.Int64())
	}
	registry, ok := values[len(values)-1].(common.Address)
	if !ok {
		return Initiate{}, fmt.Errorf("decode %s: registry is %T", Method, values[len(values)-1])
	}

	in := Initiate{
		StartTime: nums[0],
		Duration:  nums[1],
		Bound1:    nums[2],
		Registry:  registry,
	}
	if len(nums) == 4 {
		b2 := nums[3]
		in.Bound2 = &b2
	}
	return in, nil
}

// IsInitiate reports whether data starts with either initiate selector.
func IsInitiate(data []byte) bool {
	if len(data) < SelectorSize {
		return false
	}
	sel := data[:SelectorSize]
	return bytes.Equal(sel, legacySelector) || bytes.Equal(sel, boundsSelector)
}
