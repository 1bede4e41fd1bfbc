package fileproc

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestProcessingErrors(t *testing.T) {
	var errs ProcessingErrors
	if errs.HasErrors() {
		t.Error("empty collection should have no errors")
	}
	if errs.Err() != nil {
		t.Error("Err() should be nil when empty")
	}

	errs.Add("a.py", fs.ErrPermission)
	if errs.Error() != "a.py: "+fs.ErrPermission.Error() {
		t.Errorf("Error() = %q", errs.Error())
	}

	errs.Add("b.py", errors.New("disk full"))
	if errs.Len() != 2 {
		t.Errorf("Len() = %d, want 2", errs.Len())
	}
	if !strings.HasPrefix(errs.Error(), "2 files failed to process") {
		t.Errorf("Error() = %q", errs.Error())
	}

	err := errs.Err()
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("errors.Is should see collected errors")
	}
	var pe ProcessingError
	if !errors.As(err, &pe) || pe.Path != "a.py" {
		t.Errorf("errors.As = %+v", pe)
	}
}

func TestNilProcessingErrors(t *testing.T) {
	var errs *ProcessingErrors
	if errs.HasErrors() || errs.Len() != 0 {
		t.Error("nil collection should report no errors")
	}
}

func TestGuard(t *testing.T) {
	if err := Guard(func() error { return nil }); err != nil {
		t.Errorf("Guard(nil) = %v", err)
	}

	want := errors.New("boom")
	if err := Guard(func() error { return want }); !errors.Is(err, want) {
		t.Errorf("Guard should pass errors through, got %v", err)
	}

	err := Guard(func() error {
		var m map[string]int
		m["x"] = 1
		return nil
	})
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("Guard should recover panics, got %v", err)
	}
	if !strings.HasPrefix(pe.Error(), "panic: ") {
		t.Errorf("PanicError.Error() = %q", pe.Error())
	}
}
