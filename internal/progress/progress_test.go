package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestCLIProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewCLIProgress(&buf)

	// calls before Start are ignored
	p.Update(1)
	p.SetDescription("early")
	p.Finish()

	p.Start(2, "Writing run files")
	p.SetDescription("r1")
	p.Update(1)
	p.Update(2)
	p.Finish()
	p.Error(errors.New("disk full"))

	if !strings.Contains(buf.String(), "Error: disk full") {
		t.Errorf("error not written: %q", buf.String())
	}
}

func TestNoOpProgressSatisfiesReporter(t *testing.T) {
	var r Reporter = NewNoOpProgress()
	r.Start(3, "x")
	r.Update(3)
	r.SetDescription("y")
	r.Error(errors.New("ignored"))
	r.Finish()
}
