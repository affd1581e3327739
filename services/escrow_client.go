package services

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// escrowABI covers the read surface of the escrow contract. All writes
// happen client-side from user wallets; the server only reads.
const escrowABI = `[
	{
		"name": "getChallenge",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "challengeId", "type": "uint256"}],
		"outputs": [
			{"name": "creator", "type": "address"},
			{"name": "deadline", "type": "uint256"},
			{"name": "totalFor", "type": "uint256"},
			{"name": "totalAgainst", "type": "uint256"},
			{"name": "state", "type": "uint8"},
			{"name": "creatorSucceeded", "type": "bool"},
			{"name": "resolvedAt", "type": "uint256"}
		]
	}
]`

// OnChainChallenge mirrors the tuple returned by getChallenge.
type OnChainChallenge struct {
	Creator          common.Address
	Deadline         *big.Int
	TotalFor         *big.Int
	TotalAgainst     *big.Int
	State            uint8
	CreatorSucceeded bool
	ResolvedAt       *big.Int
}

type EscrowClient struct {
	client   *ethclient.Client
	contract common.Address
	abi      abi.ABI
}

// NewEscrowClient dials the RPC endpoint from ETH_RPC_URL and binds the
// escrow contract at ESCROW_CONTRACT_ADDRESS. Returns nil when either
// is unset so the rest of the service runs chain-blind in dev.
func NewEscrowClient() (*EscrowClient, error) {
	rpcURL := os.Getenv("ETH_RPC_URL")
	contractAddr := os.Getenv("ESCROW_CONTRACT_ADDRESS")
	if rpcURL == "" || contractAddr == "" {
		return nil, nil
	}
	if !common.IsHexAddress(contractAddr) {
		return nil, fmt.Errorf("invalid ESCROW_CONTRACT_ADDRESS %q", contractAddr)
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial eth rpc: %w", err)
	}
	parsed, err := abi.JSON(strings.NewReader(escrowABI))
	if err != nil {
		return nil, fmt.Errorf("parse escrow abi: %w", err)
	}
	return &EscrowClient{
		client:   client,
		contract: common.HexToAddress(contractAddr),
		abi:      parsed,
	}, nil
}

// VerifyTransaction reports whether the tx is mined and succeeded.
// A missing receipt is an error, not a failure, so callers can retry.
func (e *EscrowClient) VerifyTransaction(ctx context.Context, txHash string) (bool, error) {
	receipt, err := e.client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		return false, fmt.Errorf("fetch receipt %s: %w", txHash, err)
	}
	return receipt.Status == types.ReceiptStatusSuccessful, nil
}

// GetChallengeState reads the escrow record for a contract challenge id.
func (e *EscrowClient) GetChallengeState(ctx context.Context, contractChallengeID string) (*OnChainChallenge, error) {
	id, ok := new(big.Int).SetString(contractChallengeID, 10)
	if !ok {
		return nil, fmt.Errorf("invalid contract challenge id %q", contractChallengeID)
	}

	data, err := e.abi.Pack("getChallenge", id)
	if err != nil {
		return nil, fmt.Errorf("pack getChallenge: %w", err)
	}

	raw, err := e.client.CallContract(ctx, ethereum.CallMsg{
		To:   &e.contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("call getChallenge(%s): %w", contractChallengeID, err)
	}

	out, err := e.abi.Unpack("getChallenge", raw)
	if err != nil {
		return nil, fmt.Errorf("unpack getChallenge: %w", err)
	}

	ch := &OnChainChallenge{
		Creator:          *abi.ConvertType(out[0], new(common.Address)).(*common.Address),
		Deadline:         abi.ConvertType(out[1], new(big.Int)).(*big.Int),
		TotalFor:         abi.ConvertType(out[2], new(big.Int)).(*big.Int),
		TotalAgainst:     abi.ConvertType(out[3], new(big.Int)).(*big.Int),
		State:            *abi.ConvertType(out[4], new(uint8)).(*uint8),
		CreatorSucceeded: *abi.ConvertType(out[5], new(bool)).(*bool),
		ResolvedAt:       abi.ConvertType(out[6], new(big.Int)).(*big.Int),
	}
	return ch, nil
}

// Close releases the underlying RPC connection.
func (e *EscrowClient) Close() {
	if e != nil && e.client != nil {
		e.client.Close()
	}
}
