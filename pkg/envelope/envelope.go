// Package envelope defines the single response shape returned to the host.
//
// The host never sees Go error types. Every outcome, including failures, is
// converted into a Response and serialized as one JSON object.
package envelope

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/leapstack-labs/dbbridge/pkg/core"
)

// Status values.
const (
	StatusSuccess    = "success"
	StatusError      = "error"
	StatusMissingPkg = "missing_pkg"
)

// Action values, present only on success.
const (
	ActionPrint = "print"
	ActionPage  = "page"
)

// Response is the normalized result of one request.
type Response struct {
	Status string `json:"status"`
	// Action tells the host how to present Data.
	Action string `json:"action,omitempty"`
	// Data is printable text for ActionPrint, or a file path for ActionPage.
	Data string `json:"data"`
	// Pager is the command the host should open Data with.
	Pager   string `json:"pager,omitempty"`
	Package string `json:"package,omitempty"`
	Message string `json:"message,omitempty"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Print returns a success response the host prints as is.
func Print(data string) Response {
	return Response{Status: StatusSuccess, Action: ActionPrint, Data: data}
}

// Page returns a success response the host opens with pager.
func Page(path, pager string) Response {
	return Response{Status: StatusSuccess, Action: ActionPage, Data: path, Pager: pager}
}

// Error returns an error response carrying message.
func Error(message string) Response {
	return Response{Status: StatusError, Message: message}
}

// MissingPackage returns a response naming the package to install.
func MissingPackage(pkg string) Response {
	return Response{Status: StatusMissingPkg, Package: pkg}
}

// FromError converts any error into a response.
func FromError(err error) Response {
	if err == nil {
		return Error("unknown error")
	}
	if missing, ok := core.IsMissingDriver(err); ok {
		return MissingPackage(missing.Package)
	}

	var (
		cfgErr  *core.ConfigError
		connErr *core.ConnectionError
		qErr    *core.QueryError
		permErr *core.PermissionError
		ioErr   *core.IOError
	)
	switch {
	case errors.As(err, &cfgErr),
		errors.As(err, &connErr),
		errors.As(err, &qErr),
		errors.As(err, &permErr),
		errors.As(err, &ioErr):
		return Error(err.Error())
	default:
		return Error(fmt.Sprintf("unexpected error: %v", err))
	}
}

// OK reports whether the response is a success.
func (r Response) OK() bool {
	return r.Status == StatusSuccess
}

// Marshal serializes the response as compact JSON.
func (r Response) Marshal() ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return b, nil
}

// String returns the serialized response, falling back to an error envelope.
func (r Response) String() string {
	b, err := r.Marshal()
	if err != nil {
		return `{"status":"error","data":"","message":"failed to marshal response"}`
	}
	return string(b)
}

// Unmarshal parses a serialized response.
func Unmarshal(data []byte) (Response, error) {
	var r Response
	if err := json.Unmarshal(data, &r); err != nil {
		return Response{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return r, nil
}
