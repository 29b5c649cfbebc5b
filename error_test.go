package retryfetch

import (
	"errors"
	"testing"
)

func TestInvalidMaxTriesError(t *testing.T) {
	err := &InvalidMaxTriesError{MaxTries: 1}
	expect := "maxTries must be at least 2, received 1"

	if expect != err.Error() {
		t.Errorf("expected %q, received %q", expect, err.Error())
	}

	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Error("expected error to match ErrInvalidConfiguration")
	}
}

func TestStatusError(t *testing.T) {
	for _, test := range []struct {
		name   string
		err    *StatusError
		expect string
	}{
		{"With status text", &StatusError{StatusCode: 500, Status: "500 Internal Server Error"}, "unsuccessful status code 500 Internal Server Error"},
		{"Code only", &StatusError{StatusCode: 503}, "unsuccessful status code 503"},
	} {
		t.Run(test.name, func(t *testing.T) {
			if test.expect != test.err.Error() {
				t.Errorf("expected %q, received %q", test.expect, test.err.Error())
			}

			if errors.Is(test.err, ErrInvalidConfiguration) {
				t.Error("status errors are not configuration errors")
			}
		})
	}
}
