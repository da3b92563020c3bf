package heif

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			"code sub and message",
			NewError(ErrorDecoderPlugin, SuberrorEndOfData, "ran out"),
			"decoder plugin error: unexpected end of data: ran out",
		},
		{
			"unspecified sub omitted",
			NewError(ErrorInvalidInput, SuberrorUnspecified, "bad header"),
			"invalid input: bad header",
		},
		{
			"empty message omitted",
			NewError(ErrorUnsupportedFeature, SuberrorUnsupportedCodec, ""),
			"unsupported feature: unsupported codec",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorIsMatchesCategoryAndCause(t *testing.T) {
	err := Errorf(ErrorDecoderPlugin, SuberrorEndOfData, "VPS not pushed")

	if !errors.Is(err, ErrEndOfData) {
		t.Errorf("errors.Is(%v, ErrEndOfData) = false", err)
	}
	if errors.Is(err, ErrInvalidImageSize) {
		t.Errorf("errors.Is(%v, ErrInvalidImageSize) = true", err)
	}
	if errors.Is(err, errors.New("decoder plugin error")) {
		t.Error("matched a plain error with similar text")
	}
}

func TestErrorIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("decode stage: %w", NewError(ErrorUnsupportedFeature, SuberrorUnsupportedColorConversion, "yuv422p"))
	if !errors.Is(err, ErrUnsupportedColorConversion) {
		t.Errorf("errors.Is through wrapping = false for %v", err)
	}
}

func TestErrorAs(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewError(ErrorUsage, SuberrorUnspecified, "closed"))

	var he *Error
	if !errors.As(wrapped, &he) {
		t.Fatalf("errors.As failed for %v", wrapped)
	}
	if he.Code != ErrorUsage {
		t.Errorf("Code = %v, want usage error", he.Code)
	}
}
