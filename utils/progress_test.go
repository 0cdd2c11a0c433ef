package utils

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestLogProgressCountsConcurrentAdds(t *testing.T) {
	var out bytes.Buffer
	logger := NewLoggerTo(&out, &out)
	p, ok := NewProgress(logger, true).(*LogProgress)
	if !ok {
		t.Fatal("quiet progress should log lines")
	}

	p.Start(20, "Products")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Add(1)
		}()
	}
	wg.Wait()
	p.Finish()

	if p.Done() != 20 {
		t.Errorf("Done() = %d; want 20", p.Done())
	}
	if !strings.Contains(out.String(), "Products: finished 20/20") {
		t.Errorf("log = %q", out.String())
	}
}
