package retry

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/0xdefence/basetrace/internal/chain/base/rpc"
	"github.com/lib/pq"
)

type Class string

const (
	ClassTerminal  Class = "terminal"
	ClassTransient Class = "transient"
)

// Kind says which dependency an error came from.
type Kind string

const (
	KindRPC      Kind = "rpc"
	KindStorage  Kind = "storage"
	KindCanceled Kind = "canceled"
	KindUnknown  Kind = "unknown"
)

type Decision struct {
	Class  Class
	Kind   Kind
	Reason string
}

func (d Decision) IsTransient() bool {
	return d.Class == ClassTransient
}

func (d Decision) IsStorage() bool {
	return d.Kind == KindStorage
}

type classifiedError struct {
	err    error
	class  Class
	kind   Kind
	reason string
}

func (e *classifiedError) Error() string {
	return e.err.Error()
}

func (e *classifiedError) Unwrap() error {
	return e.err
}

func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{err: err, class: ClassTransient, kind: KindUnknown, reason: "explicit_transient"}
}

func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{err: err, class: ClassTerminal, kind: KindUnknown, reason: "explicit_terminal"}
}

// Storage marks err as a database failure. The ingest loop counts these
// toward its storage breaker.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var marked *classifiedError
	if errors.As(err, &marked) && marked.kind == KindStorage {
		return err
	}
	return &classifiedError{err: err, class: ClassTransient, kind: KindStorage, reason: "explicit_storage"}
}

func Classify(err error) Decision {
	if err == nil {
		return Decision{Class: ClassTerminal, Kind: KindUnknown, Reason: "nil_error"}
	}

	if errors.Is(err, context.Canceled) {
		return Decision{Class: ClassTerminal, Kind: KindCanceled, Reason: "context_canceled"}
	}

	var marked *classifiedError
	if errors.As(err, &marked) {
		return Decision{Class: marked.class, Kind: marked.kind, Reason: marked.reason}
	}

	var exhausted *rpc.ExhaustedError
	if errors.As(err, &exhausted) {
		return Decision{Class: ClassTransient, Kind: KindRPC, Reason: "rpc_exhausted"}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifyPostgres(pqErr)
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return Decision{Class: ClassTransient, Kind: KindStorage, Reason: "sql_connection"}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Decision{Class: ClassTransient, Kind: KindUnknown, Reason: "context_deadline_exceeded"}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Decision{Class: ClassTransient, Kind: KindRPC, Reason: "net_timeout"}
	}

	var rpcErr *rpc.RPCError
	if errors.As(err, &rpcErr) {
		return classifyJSONRPCCode(rpcErr.Code)
	}

	lower := strings.ToLower(err.Error())
	if containsAny(lower, terminalMessageTokens) {
		return Decision{Class: ClassTerminal, Kind: KindUnknown, Reason: "message_terminal"}
	}
	if containsAny(lower, transientMessageTokens) {
		return Decision{Class: ClassTransient, Kind: KindUnknown, Reason: "message_transient"}
	}

	return Decision{Class: ClassTerminal, Kind: KindUnknown, Reason: "unknown_terminal_default"}
}

// classifyPostgres treats connection and resource classes (08, 53, 57, 40)
// as transient and everything else, constraint violations included, as
// terminal.
func classifyPostgres(err *pq.Error) Decision {
	switch err.Code.Class() {
	case "08", "53", "57", "40":
		return Decision{Class: ClassTransient, Kind: KindStorage, Reason: "pq_" + err.Code.Class().Name()}
	default:
		return Decision{Class: ClassTerminal, Kind: KindStorage, Reason: "pq_" + err.Code.Name()}
	}
}

func classifyJSONRPCCode(code int) Decision {
	if code == -32603 || code == -32005 {
		return Decision{Class: ClassTransient, Kind: KindRPC, Reason: "jsonrpc_server_transient"}
	}
	if code <= -32000 && code >= -32099 {
		return Decision{Class: ClassTransient, Kind: KindRPC, Reason: "jsonrpc_server_range"}
	}
	return Decision{Class: ClassTerminal, Kind: KindRPC, Reason: "jsonrpc_terminal"}
}

func containsAny(msg string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(msg, token) {
			return true
		}
	}
	return false
}

var transientMessageTokens = []string{
	"timeout",
	"timed out",
	"temporar",
	"unavailable",
	"connection reset",
	"connection refused",
	"broken pipe",
	"too many requests",
	"rate limit",
	"http status 429",
	"http status 502",
	"http status 503",
	"http status 504",
	"server closed idle connection",
}

var terminalMessageTokens = []string{
	"invalid argument",
	"invalid params",
	"method not found",
	"parse error",
	"not found",
}
