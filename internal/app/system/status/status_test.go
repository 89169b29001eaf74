package status_test

import (
	"testing"

	"github.com/studypointin/studypoint/internal/app/system/status"
)

func TestIsValid(t *testing.T) {
	for _, s := range []string{status.Active, status.Disabled} {
		if !status.IsValid(s) {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []string{"", "archived", "Active"} {
		if status.IsValid(s) {
			t.Errorf("%q should not be valid", s)
		}
	}
}
