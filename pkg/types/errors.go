package types

import (
	"context"
	"errors"
	"fmt"
	"strings"

	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

// Common SDK errors
var (
	// Parameter validation errors
	ErrNilRPC           = errors.New("rpc client is nil")
	ErrNilMintProvider  = errors.New("mint info provider is nil")
	ErrZeroAmount       = errors.New("amount must be greater than 0")
	ErrInvalidSlippage  = errors.New("slippage bps must be <= 10000")
	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrNoInstructions   = errors.New("requires at least one instruction")

	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrMintNotFound    = errors.New("mint account not found")
	ErrPoolNotFound    = errors.New("pool account not found")

	// Decode errors
	ErrTooShort       = errors.New("account data shorter than discriminator")
	ErrSchemaMismatch = errors.New("account data does not match layout")

	// Quote errors
	ErrInvalidMintPair  = errors.New("mint pair does not belong to pool")
	ErrPoolDisabled     = errors.New("pool is disabled")
	ErrZeroLiquidity    = errors.New("pool has zero liquidity")
	ErrPriceOutOfRange  = errors.New("price out of range")
	ErrOverflow         = errors.New("arithmetic overflow")
	ErrMissingSnapshot  = errors.New("missing quote snapshot")
	ErrSimulationFailed = errors.New("simulation failed")

	// Build errors
	ErrMintMismatch            = errors.New("mint does not belong to pool")
	ErrInsufficientAccounts    = errors.New("instruction has fewer accounts than required")
	ErrMintMetadataUnavailable = errors.New("mint metadata unavailable")

	ErrUnsupportedProtocol = errors.New("unsupported protocol")
)

// DecodeKind classifies decoder failures.
type DecodeKind int

const (
	DecodeTooShort DecodeKind = iota + 1
	DecodeSchemaMismatch
)

// DecodeError reports a layout decode failure.
type DecodeError struct {
	Account string
	Kind    DecodeKind
	Want    int
	Got     int
	Err     error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("decode %s: %v (want %d bytes, got %d)", e.Account, e.sentinel(), e.Want, e.Got)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) sentinel() error {
	if e.Kind == DecodeTooShort {
		return ErrTooShort
	}
	return ErrSchemaMismatch
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.sentinel()}
	}
	return []error{e.sentinel(), e.Err}
}

// CheckLayout validates raw account data against the discriminator and a fixed layout size.
func CheckLayout(account string, data []byte, size int) error {
	if len(data) < 8 {
		return &DecodeError{Account: account, Kind: DecodeTooShort, Want: 8, Got: len(data)}
	}
	if len(data) < size {
		return &DecodeError{Account: account, Kind: DecodeSchemaMismatch, Want: size, Got: len(data)}
	}
	return nil
}

// NewSchemaMismatch wraps a Borsh decoder failure.
func NewSchemaMismatch(account string, size, got int, err error) error {
	return &DecodeError{Account: account, Kind: DecodeSchemaMismatch, Want: size, Got: got, Err: err}
}

// QuoteKind classifies quote failures.
type QuoteKind int

const (
	QuoteInvalidMintPair QuoteKind = iota + 1
	QuotePoolDisabled
	QuoteZeroLiquidity
	QuotePriceOutOfRange
	QuoteOverflow
	QuoteMissingSnapshot
)

var quoteSentinels = map[QuoteKind]error{
	QuoteInvalidMintPair: ErrInvalidMintPair,
	QuotePoolDisabled:    ErrPoolDisabled,
	QuoteZeroLiquidity:   ErrZeroLiquidity,
	QuotePriceOutOfRange: ErrPriceOutOfRange,
	QuoteOverflow:        ErrOverflow,
	QuoteMissingSnapshot: ErrMissingSnapshot,
}

// QuoteError reports a failed swap quote.
type QuoteError struct {
	Dex    string
	Kind   QuoteKind
	Detail string
}

// NewQuoteError creates a quote error for the given protocol.
func NewQuoteError(dex string, kind QuoteKind, format string, args ...any) *QuoteError {
	return &QuoteError{Dex: dex, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func (e *QuoteError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s quote: %v", e.Dex, quoteSentinels[e.Kind])
	}
	return fmt.Sprintf("%s quote: %v: %s", e.Dex, quoteSentinels[e.Kind], e.Detail)
}

func (e *QuoteError) Unwrap() error {
	return quoteSentinels[e.Kind]
}

// AsQuoteError tags a math error (usually ErrOverflow) with the protocol name.
func AsQuoteError(dex string, err error) error {
	if err == nil {
		return nil
	}
	var qe *QuoteError
	if errors.As(err, &qe) {
		return err
	}
	for kind, sentinel := range quoteSentinels {
		if errors.Is(err, sentinel) {
			return &QuoteError{Dex: dex, Kind: kind, Detail: err.Error()}
		}
	}
	return fmt.Errorf("%s quote: %w", dex, err)
}

// BuildKind classifies account builder failures.
type BuildKind int

const (
	BuildMintMismatch BuildKind = iota + 1
	BuildInsufficientAccounts
	BuildMintMetadataUnavailable
)

var buildSentinels = map[BuildKind]error{
	BuildMintMismatch:            ErrMintMismatch,
	BuildInsufficientAccounts:    ErrInsufficientAccounts,
	BuildMintMetadataUnavailable: ErrMintMetadataUnavailable,
}

// BuildError reports a failed account list construction.
type BuildError struct {
	Dex    string
	Kind   BuildKind
	Detail string
	Err    error
}

// NewBuildError creates a build error; err may be nil.
func NewBuildError(dex string, kind BuildKind, err error, format string, args ...any) *BuildError {
	return &BuildError{Dex: dex, Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

func (e *BuildError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s build: %v", e.Dex, buildSentinels[e.Kind])
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *BuildError) Unwrap() []error {
	if e.Err == nil {
		return []error{buildSentinels[e.Kind]}
	}
	return []error{buildSentinels[e.Kind], e.Err}
}

// InsufficientAccounts is the common RestoreFrom failure.
func InsufficientAccounts(dex string, want, got int) *BuildError {
	return NewBuildError(dex, BuildInsufficientAccounts, nil, "want at least %d accounts, got %d", want, got)
}

// UnsupportedProtocolError is returned for an unknown protocol tag.
type UnsupportedProtocolError struct {
	Dex string
}

func (e UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnsupportedProtocol, e.Dex)
}

func (e UnsupportedProtocolError) Unwrap() error {
	return ErrUnsupportedProtocol
}

// RPCError wraps RPC failures with operation context.
type RPCError struct {
	Op  string
	Err error
}

func (e RPCError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e RPCError) Unwrap() error {
	return e.Err
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// ProgramError represents on-chain program execution errors.
type ProgramError struct {
	Program string
	Code    int
	Message string
	Logs    []string
}

func (e ProgramError) Error() string {
	if e.Program == "" {
		return fmt.Sprintf("program error [%d]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("program %s error [%d]: %s", e.Program, e.Code, e.Message)
}

// SimulationError contains simulation failure details.
type SimulationError struct {
	Err  interface{}
	Logs []string
}

func (e SimulationError) Error() string {
	return fmt.Sprintf("simulation failed: %v", e.Err)
}

func (e SimulationError) Unwrap() error {
	return ErrSimulationFailed
}

// ParseSimulationError extracts error details from simulation result.
func ParseSimulationError(errVal interface{}, logs []string) error {
	if errVal == nil {
		return nil
	}

	if errMap, ok := errVal.(map[string]interface{}); ok {
		if instErr, exists := errMap["InstructionError"]; exists {
			if errSlice, ok := instErr.([]interface{}); ok && len(errSlice) >= 2 {
				if customErr, ok := errSlice[1].(map[string]interface{}); ok {
					if code, exists := customErr["Custom"]; exists {
						if codeNum, ok := code.(float64); ok {
							codeInt := int(codeNum)
							return &ProgramError{
								Program: extractProgramFromLogs(logs),
								Code:    codeInt,
								Message: parseErrorCode(codeInt, extractAccountFromLogs(logs)),
								Logs:    logs,
							}
						}
					}
				}
			}
		}
	}

	return &SimulationError{Err: errVal, Logs: logs}
}

// extractAccountFromLogs extracts the account name from Anchor error logs.
func extractAccountFromLogs(logs []string) string {
	const marker = "caused by account: "
	for _, log := range logs {
		if idx := strings.Index(log, marker); idx >= 0 {
			rest := log[idx+len(marker):]
			if end := strings.Index(rest, "."); end >= 0 {
				return rest[:end]
			}
			return rest
		}
	}
	return ""
}

// extractProgramFromLogs returns the program that reported the last failure.
func extractProgramFromLogs(logs []string) string {
	for i := len(logs) - 1; i >= 0; i-- {
		fields := strings.Fields(logs[i])
		if len(fields) >= 3 && fields[0] == "Program" && fields[2] == "failed:" {
			return fields[1]
		}
	}
	return ""
}

// parseErrorCode converts an Anchor framework error code to a readable message.
func parseErrorCode(code int, account string) string {
	switch code {
	case 3012:
		if account != "" {
			return fmt.Sprintf("account '%s' not initialized (create the account first)", account)
		}
		return "account not initialized"
	case 3007:
		return "account owned by a different program"
	case 2023:
		return "token program constraint violated (wrong token program for mint)"
	case 3008:
		return "program ID was not as expected (wrong program)"
	case 6000, 6001, 6002:
		// Most AMMs number slippage and amount checks first.
		if account != "" {
			return fmt.Sprintf("swap rejected by program (code %d, account: %s)", code, account)
		}
		return fmt.Sprintf("swap rejected by program (code %d)", code)
	}
	return fmt.Sprintf("error code %d", code)
}

// IsRetryableError checks if an error is retryable.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// A missing account stays missing.
	if errors.Is(err, solanarpc.ErrNotFound) || errors.Is(err, ErrAccountNotFound) {
		return false
	}
	if errors.Is(err, ErrSimulationFailed) {
		return true
	}
	var progErr *ProgramError
	if errors.As(err, &progErr) {
		return false
	}
	// Local decode/quote/build failures never change on retry.
	for _, sentinel := range []error{ErrTooShort, ErrSchemaMismatch, ErrInvalidMintPair, ErrMintMismatch, ErrInsufficientAccounts, ErrUnsupportedProtocol, ErrOverflow} {
		if errors.Is(err, sentinel) {
			return false
		}
	}
	return true
}
