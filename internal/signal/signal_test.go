package signal

import (
	"errors"
	"testing"
)

func TestSignal(t *testing.T) {
	sig := New(2.0, "a", "A")

	if sig.Value() != 2.0 {
		t.Errorf("expected value 2.0, got %f", sig.Value())
	}
	if sig.Name() != "a" {
		t.Errorf("expected name a, got %s", sig.Name())
	}
	if sig.Unit() != "A" {
		t.Errorf("expected unit A, got %s", sig.Unit())
	}
	if sig.Def() != D("a", "A") {
		t.Errorf("unexpected def %v", sig.Def())
	}
}

func TestSignalString(t *testing.T) {
	a := New(1.1, "motor_current", "A")
	b := NewRef("motor2", "A")

	if got := a.String(); got != "motor_current: 1.1[A]" {
		t.Errorf("unexpected signal string %q", got)
	}
	if got := b.String(); got != "motor2 [A] Referrer: Not Connected!" {
		t.Errorf("unexpected unbound ref string %q", got)
	}

	src := &Bus{}
	if err := src.Push(a); err != nil {
		t.Fatal(err)
	}
	dst := &RefBus{}
	if err := dst.Push(b); err != nil {
		t.Fatal(err)
	}
	if err := dst.Connect(src, []string{"motor_current"}, []string{"motor2"}); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if got := b.String(); got != "motor2: 1.1 [A] Referrer: motor_current[A]" {
		t.Errorf("unexpected bound ref string %q", got)
	}
}

func TestSharedCell(t *testing.T) {
	src, _ := NewBus(D("a", "-"))
	dst, _ := NewRefBus(D("b", "-"))

	if err := dst.Connect(src, []string{"a"}, []string{"b"}); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	a := src.At(0)
	b := dst.At(0)
	if a.Value() != b.Value() {
		t.Errorf("expected shared value, got %f and %f", a.Value(), b.Value())
	}

	a.Set(2.0)
	if b.Value() != 2.0 {
		t.Errorf("reference did not observe write: got %f", b.Value())
	}

	ka := a.Key()
	kb, ok := b.Key()
	if !ok || ka != kb {
		t.Error("bound reference should report the source cell key")
	}
}

func TestUnboundReadPanics(t *testing.T) {
	r := NewRef("dangling", "V")

	defer func() {
		rec := recover()
		if rec == nil {
			t.Fatal("expected panic on unbound read")
		}
		var uerr *UnboundError
		err, ok := rec.(error)
		if !ok || !errors.As(err, &uerr) {
			t.Fatalf("expected *UnboundError panic, got %v", rec)
		}
		if uerr.Name != "dangling" {
			t.Errorf("expected name dangling, got %s", uerr.Name)
		}
	}()

	_ = r.Value()
}

func TestDefString(t *testing.T) {
	if got := D("speed", "m/s").String(); got != "speed[m/s]" {
		t.Errorf("unexpected def string %q", got)
	}
}

func TestParseDef(t *testing.T) {
	tests := []struct {
		in   string
		want Def
	}{
		{"speed[m/s]", D("speed", "m/s")},
		{"x[]", D("x", "")},
		{"time", D("time", "")},
		{"a[b][c]", D("a[b]", "c")},
	}

	for _, tt := range tests {
		if got := ParseDef(tt.in); got != tt.want {
			t.Errorf("ParseDef(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if tt.want.Unit != "" && ParseDef(tt.want.String()) != tt.want {
			t.Errorf("round trip failed for %v", tt.want)
		}
	}
}
