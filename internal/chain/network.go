package chain

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/roach88/mktdeploy/internal/calldata"
	"github.com/roach88/mktdeploy/internal/deploy"
)

var (
	// ErrUnknownArtifact is returned when publishing a name the network cannot resolve.
	ErrUnknownArtifact = errors.New("unknown artifact")

	// ErrUnknownAccount is returned when the sender is not a funded account.
	ErrUnknownAccount = errors.New("unknown sender account")

	// ErrNoCode is returned when calling an address with no published contract.
	ErrNoCode = errors.New("no contract code at address")

	// ErrAlreadyInitiated is returned on a second initiate call to the same market.
	ErrAlreadyInitiated = errors.New("market already initiated")
)

// Call records one confirmed contract call.
type Call struct {
	From     common.Address
	Contract common.Address
	Artifact string
	Method   string
	Data     []byte
	TxHash   common.Hash
	Block    uint64
}

// Deployment records one confirmed publish.
type Deployment struct {
	deploy.Handle
	From  common.Address
	Nonce uint64
	Block uint64
}

// Network is a deterministic in-memory chain.
//
// Thread-safety: all methods are safe for concurrent use.
type Network struct {
	mu sync.Mutex

	name      string
	accounts  []common.Address
	artifacts map[string]bool
	nonces    map[common.Address]uint64
	code      map[common.Address]string
	initiated map[common.Address]bool
	block     uint64

	deployments []Deployment
	calls       []Call

	failPublish map[string]error
	failCall    map[string]error
}

// Option configures a Network.
type Option func(*Network)

// WithAccounts sets the funded accounts. accounts[0] is the default sender.
func WithAccounts(accounts ...common.Address) Option {
	return func(n *Network) {
		n.accounts = append([]common.Address(nil), accounts...)
	}
}

// WithSeedAccounts derives count accounts from seed.
func WithSeedAccounts(seed string, count int) Option {
	return func(n *Network) {
		n.accounts = DeriveAccounts(seed, count)
	}
}

// WithArtifacts replaces the set of resolvable artifact names.
func WithArtifacts(names ...string) Option {
	return func(n *Network) {
		n.artifacts = make(map[string]bool, len(names))
		for _, name := range names {
			n.artifacts[name] = true
		}
	}
}

// FailPublish makes every publish of artifact fail with err.
func FailPublish(artifact string, err error) Option {
	return func(n *Network) { n.failPublish[artifact] = err }
}

// FailCall makes every call of method fail with err.
func FailCall(method string, err error) Option {
	return func(n *Network) { n.failCall[method] = err }
}

// NewNetwork creates a network that resolves MarketRegistry and Market and
// has ten accounts derived from name, unless options say otherwise.
func NewNetwork(name string, opts ...Option) *Network {
	n := &Network{
		name:        name,
		accounts:    DeriveAccounts(name, 10),
		nonces:      make(map[common.Address]uint64),
		code:        make(map[common.Address]string),
		initiated:   make(map[common.Address]bool),
		failPublish: make(map[string]error),
		failCall:    make(map[string]error),
	}
	WithArtifacts(deploy.ArtifactRegistry, deploy.ArtifactMarket)(n)
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// DeriveAccounts returns count addresses from keccak256(seed || index).
func DeriveAccounts(seed string, count int) []common.Address {
	out := make([]common.Address, 0, count)
	for i := 0; i < count; i++ {
		var idx [8]byte
		binary.BigEndian.PutUint64(idx[:], uint64(i))
		out = append(out, common.BytesToAddress(crypto.Keccak256([]byte(seed), idx[:])))
	}
	return out
}

// Name returns the network name.
func (n *Network) Name() string { return n.name }

// Accounts returns the funded accounts.
func (n *Network) Accounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]common.Address(nil), n.accounts...), nil
}

// Publish creates artifact from sender and returns its confirmed handle.
func (n *Network) Publish(ctx context.Context, from common.Address, artifact string) (deploy.Handle, error) {
	if err := ctx.Err(); err != nil {
		return deploy.Handle{}, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.artifacts[artifact] {
		return deploy.Handle{}, fmt.Errorf("%w: %s", ErrUnknownArtifact, artifact)
	}
	if !n.isAccount(from) {
		return deploy.Handle{}, fmt.Errorf("%w: %s", ErrUnknownAccount, from.Hex())
	}
	if err := n.failPublish[artifact]; err != nil {
		return deploy.Handle{}, err
	}

	nonce := n.nonces[from]
	addr := crypto.CreateAddress(from, nonce)
	tx := txHash(from, nonce, []byte(artifact))
	n.nonces[from] = nonce + 1
	n.block++
	n.code[addr] = artifact

	h := deploy.Handle{Artifact: artifact, Address: addr, TxHash: tx}
	n.deployments = append(n.deployments, Deployment{Handle: h, From: from, Nonce: nonce, Block: n.block})
	return h, nil
}

// Call sends data to contract and returns the confirmed transaction hash.
// initiate calls are decoded and may be sent only once per market.
func (n *Network) Call(ctx context.Context, from, contract common.Address, data []byte) (common.Hash, error) {
	if err := ctx.Err(); err != nil {
		return common.Hash{}, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.isAccount(from) {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrUnknownAccount, from.Hex())
	}
	artifact, ok := n.code[contract]
	if !ok {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrNoCode, contract.Hex())
	}

	method := fmt.Sprintf("0x%x", data[:min(len(data), calldata.SelectorSize)])
	if calldata.IsInitiate(data) {
		method = calldata.Method
		if _, err := calldata.Decode(data); err != nil {
			return common.Hash{}, fmt.Errorf("revert: %w", err)
		}
		if n.initiated[contract] {
			return common.Hash{}, fmt.Errorf("revert: %w", ErrAlreadyInitiated)
		}
	}
	if err := n.failCall[method]; err != nil {
		return common.Hash{}, err
	}
	if method == calldata.Method {
		n.initiated[contract] = true
	}

	nonce := n.nonces[from]
	tx := txHash(from, nonce, data)
	n.nonces[from] = nonce + 1
	n.block++

	n.calls = append(n.calls, Call{
		From:     from,
		Contract: contract,
		Artifact: artifact,
		Method:   method,
		Data:     append([]byte(nil), data...),
		TxHash:   tx,
		Block:    n.block,
	})
	return tx, nil
}

// Deployments returns the confirmed publishes in order.
func (n *Network) Deployments() []Deployment {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Deployment(nil), n.deployments...)
}

// Calls returns the confirmed calls in order.
func (n *Network) Calls() []Call {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Call(nil), n.calls...)
}

// CodeAt returns the artifact published at addr, if any.
func (n *Network) CodeAt(addr common.Address) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	artifact, ok := n.code[addr]
	return artifact, ok
}

// PredictAddress returns the address a publish from sender will get once
// ahead other transactions from sender have been confirmed.
func (n *Network) PredictAddress(from common.Address, ahead uint64) common.Address {
	n.mu.Lock()
	defer n.mu.Unlock()
	return crypto.CreateAddress(from, n.nonces[from]+ahead)
}

// BlockNumber returns the number of confirmed transactions.
func (n *Network) BlockNumber() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.block
}

func (n *Network) isAccount(addr common.Address) bool {
	for _, a := range n.accounts {
		if a == addr {
			return true
		}
	}
	return false
}

func txHash(from common.Address, nonce uint64, payload []byte) common.Hash {
	var nb [8]byte
	binary.BigEndian.PutUint64(nb[:], nonce)
	return crypto.Keccak256Hash(from.Bytes(), nb[:], payload)
}
