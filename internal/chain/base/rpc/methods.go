package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

func (c *Client) BlockNumber(ctx context.Context) (int64, CallMeta, error) {
	result, meta, err := c.Call(ctx, "eth_blockNumber", []interface{}{})
	if err != nil {
		return 0, meta, fmt.Errorf("eth_blockNumber: %w", err)
	}

	var hexNum string
	if err := json.Unmarshal(result, &hexNum); err != nil {
		return 0, meta, fmt.Errorf("unmarshal block number: %w", err)
	}

	blockNumber, err := ParseHexInt64(hexNum)
	if err != nil {
		return 0, meta, fmt.Errorf("parse block number: %w", err)
	}
	return blockNumber, meta, nil
}

// BlockByNumber returns nil when the node does not have the block yet.
func (c *Client) BlockByNumber(ctx context.Context, number int64, fullTx bool) (*Block, CallMeta, error) {
	params := []interface{}{FormatHexInt64(number), fullTx}
	result, meta, err := c.Call(ctx, "eth_getBlockByNumber", params)
	if err != nil {
		return nil, meta, fmt.Errorf("eth_getBlockByNumber(%d): %w", number, err)
	}
	if len(result) == 0 || string(result) == "null" {
		return nil, meta, nil
	}

	var block Block
	if err := json.Unmarshal(result, &block); err != nil {
		return nil, meta, fmt.Errorf("unmarshal block %d: %w", number, err)
	}
	return &block, meta, nil
}

func (c *Client) Logs(ctx context.Context, filter LogFilter) ([]*Log, CallMeta, error) {
	result, meta, err := c.Call(ctx, "eth_getLogs", []interface{}{filter})
	if err != nil {
		return nil, meta, fmt.Errorf("eth_getLogs[%s,%s]: %w", filter.FromBlock, filter.ToBlock, err)
	}

	var logs []*Log
	if err := json.Unmarshal(result, &logs); err != nil {
		return nil, meta, fmt.Errorf("unmarshal logs: %w", err)
	}
	return logs, meta, nil
}

// RangeFilter builds a filter over [from, to] matching topic0.
func RangeFilter(from, to int64, topic0 string) LogFilter {
	return LogFilter{
		FromBlock: FormatHexInt64(from),
		ToBlock:   FormatHexInt64(to),
		Topics:    []interface{}{topic0},
	}
}

func ParseHexInt64(value string) (int64, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 0, fmt.Errorf("empty hex value")
	}
	raw = strings.TrimPrefix(strings.ToLower(raw), "0x")
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(raw, 16, 63)
	if err != nil {
		return 0, fmt.Errorf("parse hex %q: %w", value, err)
	}
	return int64(parsed), nil
}

// ParseHexBig parses a hex quantity or 32-byte word of any width. Leading
// zeros are accepted; an empty value ("0x") is zero.
func ParseHexBig(value string) (*big.Int, error) {
	raw := strings.TrimSpace(value)
	if raw != "" && !strings.HasPrefix(raw, "0x") && !strings.HasPrefix(raw, "0X") {
		return nil, fmt.Errorf("parse hex %q: missing 0x prefix", value)
	}
	digits := raw
	if len(digits) >= 2 {
		digits = digits[2:]
	}
	if !isHex(digits) {
		return nil, fmt.Errorf("parse hex %q: invalid digit", value)
	}
	return new(big.Int).SetBytes(common.FromHex(raw)), nil
}

func FormatHexInt64(value int64) string {
	return hexutil.EncodeUint64(uint64(value))
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
