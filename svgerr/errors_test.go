package svgerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", New(InvalidColorFormat, "invalid color %q", "#12"), `invalid color "#12"`},
		{"wrapped", Wrap(ParseFailure, errors.New("EOF"), "parsing svg"), "parsing svg: EOF"},
		{"io", IO("out.jpg", errors.New("permission denied"), "writing"), "writing out.jpg: permission denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindThroughWrapping(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("run: %w", IO("<stdout>", cause, "writing"))

	if !Is(err, IoFailure) {
		t.Errorf("Is(err, IoFailure) = false, want true")
	}
	if Is(err, EncodeFailure) {
		t.Errorf("Is(err, EncodeFailure) = true, want false")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain) = %q, want empty", got)
	}
}
