package heif

import "fmt"

// ErrorCode is the coarse category of a decoding failure.
type ErrorCode int

const (
	ErrorOK ErrorCode = iota
	ErrorInvalidInput
	ErrorUnsupportedFiletype
	ErrorUnsupportedFeature
	ErrorUsage
	ErrorMemoryAllocation
	ErrorDecoderPlugin
)

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrorOK:
		return "success"
	case ErrorInvalidInput:
		return "invalid input"
	case ErrorUnsupportedFiletype:
		return "unsupported file type"
	case ErrorUnsupportedFeature:
		return "unsupported feature"
	case ErrorUsage:
		return "usage error"
	case ErrorMemoryAllocation:
		return "memory allocation error"
	case ErrorDecoderPlugin:
		return "decoder plugin error"
	default:
		return fmt.Sprintf("error code %d", int(c))
	}
}

// Suberror refines an ErrorCode with the specific cause.
type Suberror int

const (
	SuberrorUnspecified Suberror = iota
	SuberrorEndOfData
	SuberrorInvalidImageSize
	SuberrorUnsupportedColorConversion
	SuberrorUnsupportedCodec
	SuberrorInvalidBox
	SuberrorItemNotFound
	SuberrorNoItemData
)

// String returns a human-readable name for the suberror.
func (s Suberror) String() string {
	switch s {
	case SuberrorUnspecified:
		return "unspecified"
	case SuberrorEndOfData:
		return "unexpected end of data"
	case SuberrorInvalidImageSize:
		return "invalid image size"
	case SuberrorUnsupportedColorConversion:
		return "unsupported color conversion"
	case SuberrorUnsupportedCodec:
		return "unsupported codec"
	case SuberrorInvalidBox:
		return "invalid box"
	case SuberrorItemNotFound:
		return "item not found"
	case SuberrorNoItemData:
		return "no item data"
	default:
		return fmt.Sprintf("suberror %d", int(s))
	}
}

// Error is the structured error value crossing the plugin/host boundary.
// A nil error means success. Two Errors match under errors.Is when their
// Code and Subcode are equal; the message is informational only.
type Error struct {
	Code    ErrorCode
	Subcode Suberror
	Message string
}

// NewError builds an Error from its category, cause and message.
func NewError(code ErrorCode, sub Suberror, msg string) *Error {
	return &Error{Code: code, Subcode: sub, Message: msg}
}

// Errorf builds an Error with a formatted message.
func Errorf(code ErrorCode, sub Suberror, format string, args ...interface{}) *Error {
	return &Error{Code: code, Subcode: sub, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	s := e.Code.String()
	if e.Subcode != SuberrorUnspecified {
		s += ": " + e.Subcode.String()
	}
	if e.Message != "" {
		s += ": " + e.Message
	}
	return s
}

// Is reports whether target carries the same error category and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Subcode == t.Subcode
}

// Canonical errors for errors.Is matching. Errors returned by decoders carry
// messages with more context but compare equal to these.
var (
	ErrEndOfData                  = NewError(ErrorDecoderPlugin, SuberrorEndOfData, "")
	ErrInvalidImageSize           = NewError(ErrorDecoderPlugin, SuberrorInvalidImageSize, "")
	ErrUnsupportedColorConversion = NewError(ErrorUnsupportedFeature, SuberrorUnsupportedColorConversion, "")
	ErrNoCompatibleDecoder        = NewError(ErrorUnsupportedFeature, SuberrorUnsupportedCodec, "")
)
