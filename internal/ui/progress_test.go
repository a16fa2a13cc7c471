package ui

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestProgress_Done(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 3)

	p.Done("cns-crypto cloned")
	p.Fail("cns-transport", errors.New("boom"))
	p.Done("cns-runtime cloned")

	out := buf.String()
	for _, want := range []string{
		"[1/3] cns-crypto cloned",
		"[2/3] cns-transport: boom",
		"[3/3] cns-runtime cloned",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if got := p.Summary(); got != "2 done, 1 failed" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestProgress_concurrent(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 20)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Done("ok")
		}()
	}
	wg.Wait()

	if !strings.Contains(buf.String(), "[20/20] ok") {
		t.Errorf("last line should read 20/20:\n%s", buf.String())
	}
}

func TestProgress_Log(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 1)

	p.Log("Cloning %s ...", "cns-crypto")

	if !strings.Contains(buf.String(), "Cloning cns-crypto ...") {
		t.Errorf("missing log message: %s", buf.String())
	}
}
