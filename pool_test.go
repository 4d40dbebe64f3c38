package coursedesc

import (
	"runtime"
	"testing"
)

func TestConverterPoolAcquireRelease(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(2, withPDFConverter(&stubPDF{}))
	defer pool.Close()

	c1 := pool.Acquire()
	c2 := pool.Acquire()
	if c1 == nil || c2 == nil {
		t.Fatal("Acquire() returned nil converter")
	}
	if c1 == c2 {
		t.Error("pool handed out the same converter twice")
	}

	pool.Release(c1)
	if got := pool.Acquire(); got != c1 {
		t.Error("released converter was not reused")
	}
}

func TestConverterPoolSize(t *testing.T) {
	t.Parallel()

	if got := NewConverterPool(3).Size(); got != 3 {
		t.Errorf("Size() = %d, want 3", got)
	}
	// Zero and negative sizes are clamped to one worker.
	if got := NewConverterPool(0).Size(); got != 1 {
		t.Errorf("Size() = %d, want 1", got)
	}
}

func TestConverterPoolClose(t *testing.T) {
	t.Parallel()

	pdf := &stubPDF{}
	pool := NewConverterPool(1, withPDFConverter(pdf))
	c := pool.Acquire()
	pool.Release(c)

	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !pdf.closed {
		t.Error("Close() did not close the converter")
	}
	// Closing twice is a no-op.
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	if got := ResolvePoolSize(4); got != 4 {
		t.Errorf("explicit workers = %d, want 4", got)
	}

	got := ResolvePoolSize(0)
	if got < MinPoolSize || got > MaxPoolSize {
		t.Errorf("auto size = %d, outside [%d,%d]", got, MinPoolSize, MaxPoolSize)
	}

	want := runtime.GOMAXPROCS(0) / cpuDivisor
	if want < MinPoolSize {
		want = MinPoolSize
	}
	if want > MaxPoolSize {
		want = MaxPoolSize
	}
	if got != want {
		t.Errorf("auto size = %d, want %d", got, want)
	}
}
