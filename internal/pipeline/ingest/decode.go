package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/0xdefence/basetrace/internal/chain/base/rpc"
	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// TransferTopic is topic0 of the ERC20 Transfer(address,address,uint256) event.
var TransferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)")).Hex()

// decodeTransfer turns a Transfer log into a TokenTransfer. ok is false for
// logs that are not three-topic Transfer events (ERC-721 transfers index the
// token id as a fourth topic and are skipped).
func decodeTransfer(l *rpc.Log) (*model.TokenTransfer, bool, error) {
	if l == nil || l.Removed || len(l.Topics) != 3 || !strings.EqualFold(l.Topics[0], TransferTopic) {
		return nil, false, nil
	}

	blockNumber, err := rpc.ParseHexInt64(l.BlockNumber)
	if err != nil {
		return nil, false, fmt.Errorf("transfer log %s: block number: %w", l.TransactionHash, err)
	}
	amount, err := rpc.ParseHexBig(emptyAsZero(l.Data))
	if err != nil {
		return nil, false, fmt.Errorf("transfer log %s: amount: %w", l.TransactionHash, err)
	}

	t := &model.TokenTransfer{
		TxHash:       strings.ToLower(l.TransactionHash),
		TokenAddress: normalizeAddress(l.Address),
		FromAddress:  topicAddress(l.Topics[1]),
		ToAddress:    topicAddress(l.Topics[2]),
		Amount:       amount.String(),
		BlockNumber:  blockNumber,
	}
	if l.LogIndex != "" {
		if idx, err := rpc.ParseHexInt64(l.LogIndex); err == nil {
			t.LogIndex = &idx
		}
	}
	if l.BlockTimestamp != "" {
		if ts, err := rpc.ParseHexInt64(l.BlockTimestamp); err == nil {
			at := time.Unix(ts, 0).UTC()
			t.Timestamp = &at
		}
	}
	return t, true, nil
}

// topicAddress takes the low 20 bytes of a 32-byte indexed topic.
func topicAddress(topic string) string {
	return strings.ToLower(common.BytesToAddress(common.FromHex(topic)).Hex())
}

func normalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

func emptyAsZero(data string) string {
	if data == "" {
		return "0x"
	}
	return data
}

// normalizeBlock converts an RPC block into transaction rows.
func normalizeBlock(b *rpc.Block) ([]*model.Transaction, error) {
	number, err := rpc.ParseHexInt64(b.Number)
	if err != nil {
		return nil, fmt.Errorf("block number: %w", err)
	}
	var ts *time.Time
	if b.Timestamp != "" {
		sec, err := rpc.ParseHexInt64(b.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("block %d timestamp: %w", number, err)
		}
		at := time.Unix(sec, 0).UTC()
		ts = &at
	}

	txs := make([]*model.Transaction, 0, len(b.Transactions))
	for _, raw := range b.Transactions {
		if raw == nil || raw.Hash == "" {
			continue
		}
		value, err := rpc.ParseHexBig(emptyAsZero(raw.Value))
		if err != nil {
			return nil, fmt.Errorf("tx %s value: %w", raw.Hash, err)
		}
		t := &model.Transaction{
			TxHash:      strings.ToLower(raw.Hash),
			BlockNumber: number,
			FromAddress: normalizeAddress(raw.From),
			ValueWei:    value.String(),
			Timestamp:   ts,
		}
		if raw.To != nil && *raw.To != "" {
			to := normalizeAddress(*raw.To)
			t.ToAddress = &to
		}
		txs = append(txs, t)
	}
	return txs, nil
}
