package moros

import "testing"

func TestBlockWriteRead(t *testing.T) {
	mountFixture(t, 64)
	v := mounted

	b, err := allocBlock(v)
	if err != nil {
		t.Fatalf("allocBlock: %v", err)
	}
	copy(b.DataMut(), "hello block")
	if err := b.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := readBlock(v, b.Addr())
	if err != nil {
		t.Fatalf("readBlock: %v", err)
	}
	if string(got.Data()[:len("hello block")]) != "hello block" {
		t.Errorf("readBlock payload = %q, want %q", got.Data()[:11], "hello block")
	}
}

func TestBlockChain(t *testing.T) {
	mountFixture(t, 64)
	v := mounted

	first, err := allocBlock(v)
	if err != nil {
		t.Fatalf("allocBlock: %v", err)
	}

	if _, ok, err := first.Next(); err != nil || ok {
		t.Fatalf("fresh block should have no successor, got ok=%v err=%v", ok, err)
	}

	second, err := first.AllocNext()
	if err != nil {
		t.Fatalf("AllocNext: %v", err)
	}

	reread, err := readBlock(v, first.Addr())
	if err != nil {
		t.Fatalf("readBlock: %v", err)
	}
	next, ok, err := reread.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !ok {
		t.Fatal("expected a successor after AllocNext")
	}
	if next.Addr() != second.Addr() {
		t.Errorf("successor addr = %d, want %d", next.Addr(), second.Addr())
	}
}

func TestAllocBlockOutOfSpace(t *testing.T) {
	mountFixture(t, 1)
	v := mounted

	// blockCount=1: the root directory's own block already consumed the
	// single data block Format allocated, so the very next alloc must fail.
	if _, err := allocBlock(v); err != ErrOutOfSpace {
		t.Errorf("allocBlock on a full volume = %v, want ErrOutOfSpace", err)
	}
}
