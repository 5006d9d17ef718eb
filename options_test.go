package px

import "testing"

func TestOptions(t *testing.T) {
	p := New(Sz(1, 1))
	if p.Label() != "" || p.upload != UploadFlattened {
		t.Errorf("defaults: label=%q upload=%v", p.Label(), p.upload)
	}

	p = New(Sz(1, 1), WithLabel("canvas"), WithUploadMode(UploadPerRow))
	if p.Label() != "canvas" {
		t.Errorf("Label() = %q, want canvas", p.Label())
	}
	if p.upload != UploadPerRow {
		t.Errorf("upload = %v, want per-row", p.upload)
	}
	if UploadPerRow.String() != "per-row" || UploadFlattened.String() != "flattened" {
		t.Error("UploadMode.String mismatch")
	}
}

func TestPerRowUploadWritesEachRow(t *testing.T) {
	acc := &countingAccelerator{}
	p := New(Sz(3, 5), WithUploadMode(UploadPerRow))
	if err := p.EnsureUpToDateOnGPU(acc, NeedItNow); err != nil {
		t.Fatal(err)
	}
	if acc.writes != 5 {
		t.Errorf("writes = %d, want 5", acc.writes)
	}
	if acc.flushes != 1 {
		t.Errorf("flushes = %d, want 1", acc.flushes)
	}
}
