package moros

import "testing"

// Scenario S1: creating a directory allocates its entry's content block;
// bitmap shows both the root's block and the new directory's block
// allocated.
func TestScenarioCreateDirAllocatesBlock(t *testing.T) {
	mountFixture(t, 64)
	v := mounted

	rootAddr := RootDir().Addr()
	if free, _ := v.bitmapIsFree(rootAddr); free {
		t.Fatal("root's own block should already be allocated by Format")
	}

	a, err := CreateDir("/a")
	if err != nil {
		t.Fatalf("CreateDir: %v", err)
	}
	if free, _ := v.bitmapIsFree(a.Addr()); free {
		t.Error("new directory's block should be allocated")
	}

	if _, err := OpenDir("/a"); err != nil {
		t.Errorf("OpenDir(\"/a\") after create: %v", err)
	}
}

// Scenario S2: a 3-byte file round-trips and its parent's DirEntry size
// field matches.
func TestScenarioSmallFileRoundTrip(t *testing.T) {
	mountFixture(t, 64)

	f, err := CreateFile("/hello.txt")
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if err := f.Write([]byte("hi\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := OpenFile("/hello.txt")
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	s, err := got.ReadToString()
	if err != nil {
		t.Fatalf("ReadToString: %v", err)
	}
	if s != "hi\n" {
		t.Errorf("ReadToString() = %q, want %q", s, "hi\n")
	}

	root, _ := OpenDir("/")
	entry := mustFind(t, root, "hello.txt")
	if entry.Size != 3 {
		t.Errorf("DirEntry.Size = %d, want 3", entry.Size)
	}
}

// Scenario S3: a 1000-byte file spans multiple content blocks and reads
// back verbatim.
func TestScenarioLargeFileRoundTrip(t *testing.T) {
	mountFixture(t, 64)

	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i % 251)
	}

	f, err := CreateFile("/big")
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if err := f.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if f.Size() != 1000 {
		t.Fatalf("Size() = %d, want 1000", f.Size())
	}

	got, err := OpenFile("/big")
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	buf := make([]byte, 1000)
	n, err := got.Read(0, buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 1000 {
		t.Fatalf("Read returned %d bytes, want 1000", n)
	}
	for i := range data {
		if buf[i] != data[i] {
			t.Fatalf("byte %d = %d, want %d", i, buf[i], data[i])
		}
	}
}

// Scenario S4: 50 files with long-ish names force the root directory past
// a single block; enumeration still returns all of them.
func TestScenarioManyEntriesSpanBlocks(t *testing.T) {
	mountFixture(t, 512)

	root, err := OpenDir("/")
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}

	const n = 50
	names := make([]string, n)
	for i := 0; i < n; i++ {
		name := "file-" + string(rune('a'+i%26)) + string(rune('0'+i%10))
		names[i] = name
		if _, err := root.CreateFile(name); err != nil {
			t.Fatalf("CreateFile(%q): %v", name, err)
		}
	}

	seen := map[string]bool{}
	rd, err := root.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for {
		entry, ok, err := rd.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		seen[entry.Name] = true
	}

	for _, name := range names {
		if !seen[name] {
			t.Errorf("enumeration missing entry %q", name)
		}
	}
}

// Scenario S5: deleting a file removes it from enumeration, Open fails,
// and its content block is reported free again.
func TestScenarioDeleteFreesAndHides(t *testing.T) {
	mountFixture(t, 64)
	v := mounted

	f, err := CreateFile("/hello.txt")
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if err := f.Write([]byte("hi\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	addr := f.Addr()

	if err := DeleteFile("/hello.txt"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}

	root, _ := OpenDir("/")
	rd, _ := root.Read()
	for {
		entry, ok, err := rd.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		if entry.Name == "hello.txt" {
			t.Fatal("deleted file still appears in enumeration")
		}
	}

	if _, err := OpenFile("/hello.txt"); err != ErrNotFound {
		t.Errorf("OpenFile after delete = %v, want ErrNotFound", err)
	}

	if free, err := v.bitmapIsFree(addr); err != nil || !free {
		t.Errorf("deleted file's block free=%v err=%v, want true,nil", free, err)
	}
}

// Scenario S6: Dir.open("/") fails before any volume is mounted and
// succeeds after mounting a freshly formatted one.
func TestScenarioOpenRootRequiresMount(t *testing.T) {
	mounted = nil

	if _, err := OpenDir("/"); err != ErrNotMounted {
		t.Errorf("OpenDir(\"/\") before mount = %v, want ErrNotMounted", err)
	}

	mountFixture(t, 64)

	if _, err := OpenDir("/"); err != nil {
		t.Errorf("OpenDir(\"/\") after mount: %v", err)
	}
}
