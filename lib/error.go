package lib

import (
	"fmt"
	"math"
	"runtime"
)

type ErrorI interface {
	Code() ErrorCode     // Returns the error code
	Module() ErrorModule // Returns the error module
	error                // Implements the built-in error interface
}

var _ ErrorI = &Error{} // Ensures *Error implements ErrorI

type ErrorCode uint32 // Defines a type for error codes

type ErrorModule string // Defines a type for error modules

type Error struct {
	ECode   ErrorCode   `json:"code"`   // Error code
	EModule ErrorModule `json:"module"` // Error module
	Msg     string      `json:"msg"`    // Error message
}

func NewError(code ErrorCode, module ErrorModule, msg string) *Error {
	// Constructs a new Error instance
	return &Error{ECode: code, EModule: module, Msg: msg}
}

// Code() returns the associated error code
func (p *Error) Code() ErrorCode { return p.ECode }

// Module() returns module field
func (p *Error) Module() ErrorModule { return p.EModule }

// String() calls Error()
func (p *Error) String() string { return p.Error() }

// Error() returns a formatted string including module, code, and message; the caller stack it
// walks is not included in the result
func (p *Error) Error() string {
	stack, pc := "", make([]uintptr, 1000)
	_ = runtime.Callers(1, pc)
	frames := runtime.CallersFrames(pc)
	if frames == nil {
		return fmt.Sprintf("\nModule:  %s\nCode:    %d\nMessage: %s\n", p.EModule, p.ECode, p.Msg)
	}
	for f, again := frames.Next(); again; f, again = frames.Next() {
		stack += fmt.Sprintf("\n%s L%d", f.File, f.Line)
	}
	return fmt.Sprintf("\nModule:  %s\nCode:    %d\nMessage: %s", p.EModule, p.ECode, p.Msg)
}

const (
	NoCode ErrorCode = math.MaxUint32

	// Main Module
	MainModule ErrorModule = "main"

	// Main Module Error Codes
	CodeJSONMarshal    ErrorCode = 1
	CodeJSONUnmarshal  ErrorCode = 2
	CodeCBORMarshal    ErrorCode = 3
	CodeCBORUnmarshal  ErrorCode = 4
	CodeStringToBytes  ErrorCode = 5
	CodeWriteFile      ErrorCode = 6
	CodeReadFile       ErrorCode = 7
	CodeInvalidArgument ErrorCode = 8

	// Storage Module
	StorageModule ErrorModule = "store"

	// Storage Module Error Codes
	CodeOpenDB           ErrorCode = 1
	CodeCloseDB          ErrorCode = 2
	CodeStoreSet         ErrorCode = 3
	CodeStoreGet         ErrorCode = 4
	CodeStoreDelete      ErrorCode = 5
	CodeCommitDB         ErrorCode = 6
	CodeFlushBatch       ErrorCode = 7
	CodeInvalidKey       ErrorCode = 8
	CodeReserveKeyWrite  ErrorCode = 9
	CodeGarbageCollectDB ErrorCode = 10
	CodeBatchInFlight    ErrorCode = 11

	// Merkle Patricia Forestry Module
	MPFModule ErrorModule = "mpf"

	// MPF Module Error Codes
	CodeAlreadyPresent    ErrorCode = 1
	CodeNotPresent        ErrorCode = 2
	CodeEmptyTrie         ErrorCode = 3
	CodeInvalidProof      ErrorCode = 4
	CodeMalformedInput    ErrorCode = 5
	CodeInvalidRootLength ErrorCode = 6
	CodeNibbleCollision   ErrorCode = 7
	CodePathMismatch      ErrorCode = 8
	CodeUnknownStepType   ErrorCode = 9
)

// error implementations below, shared by every package in this module
func newLogError(err error) ErrorI {
	return NewError(NoCode, MainModule, err.Error())
}

func ErrJSONMarshal(err error) ErrorI {
	return NewError(CodeJSONMarshal, MainModule, fmt.Sprintf("json.marshal() failed with err: %s", err.Error()))
}

func ErrJSONUnmarshal(err error) ErrorI {
	return NewError(CodeJSONUnmarshal, MainModule, fmt.Sprintf("json.unmarshal() failed with err: %s", err.Error()))
}

func ErrCBORMarshal(err error) ErrorI {
	return NewError(CodeCBORMarshal, MainModule, fmt.Sprintf("cbor.marshal() failed with err: %s", err.Error()))
}

func ErrCBORUnmarshal(err error) ErrorI {
	return NewError(CodeCBORUnmarshal, MainModule, fmt.Sprintf("cbor.unmarshal() failed with err: %s", err.Error()))
}

func ErrStringToBytes(err error) ErrorI {
	return NewError(CodeStringToBytes, MainModule, fmt.Sprintf("stringToBytes() failed with err: %s", err.Error()))
}

func ErrWriteFile(err error) ErrorI {
	return NewError(CodeWriteFile, MainModule, fmt.Sprintf("writeFile() failed with err: %s", err.Error()))
}

func ErrReadFile(err error) ErrorI {
	return NewError(CodeReadFile, MainModule, fmt.Sprintf("readFile() failed with err: %s", err.Error()))
}

func ErrInvalidArgument() ErrorI {
	return NewError(CodeInvalidArgument, MainModule, "argument is invalid")
}
