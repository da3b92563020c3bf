//go:build !aom

package av1decoder

import "testing"

func TestNotAvailableWithoutTag(t *testing.T) {
	if Available() {
		t.Error("Available() = true without the aom build tag")
	}
}
