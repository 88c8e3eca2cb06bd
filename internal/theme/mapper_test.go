package theme

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestDirectoryMapper(t *testing.T) {
	mapper := NewDirectoryMapper("mechanical", []string{"/themes/mechanical", "/themes/default"})

	t.Run("joins every base path in order", func(t *testing.T) {
		candidates, err := mapper.MapPath("click/button.wav")
		if err != nil {
			t.Fatalf("MapPath failed: %v", err)
		}
		want := []string{
			filepath.Join("/themes/mechanical", "click/button.wav"),
			filepath.Join("/themes/default", "click/button.wav"),
		}
		if len(candidates) != len(want) {
			t.Fatalf("candidates = %v, want %v", candidates, want)
		}
		for i := range want {
			if candidates[i] != want[i] {
				t.Errorf("candidate[%d] = %q, want %q", i, candidates[i], want[i])
			}
		}
	})

	t.Run("empty path maps to nothing", func(t *testing.T) {
		candidates, err := mapper.MapPath("")
		if err != nil {
			t.Fatalf("MapPath failed: %v", err)
		}
		if len(candidates) != 0 {
			t.Errorf("candidates = %v, want empty", candidates)
		}
	})

	if mapper.Name() != "mechanical" {
		t.Errorf("Name = %q, want mechanical", mapper.Name())
	}
	if mapper.Type() != "directory" {
		t.Errorf("Type = %q, want directory", mapper.Type())
	}
}

func TestJSONMapper(t *testing.T) {
	mapper := NewJSONMapper("custom", map[string]string{
		"click.wav": "/elsewhere/snap.wav",
	})

	t.Run("mapped path", func(t *testing.T) {
		candidates, err := mapper.MapPath("click.wav")
		if err != nil {
			t.Fatalf("MapPath failed: %v", err)
		}
		if len(candidates) != 1 || candidates[0] != "/elsewhere/snap.wav" {
			t.Errorf("candidates = %v, want [/elsewhere/snap.wav]", candidates)
		}
	})

	t.Run("unmapped path yields no candidates", func(t *testing.T) {
		candidates, err := mapper.MapPath("hover.wav")
		if err != nil {
			t.Fatalf("MapPath failed: %v", err)
		}
		if len(candidates) != 0 {
			t.Errorf("candidates = %v, want empty", candidates)
		}
	})

	if mapper.Type() != "json" {
		t.Errorf("Type = %q, want json", mapper.Type())
	}
}

func TestLoadJSONMapper(t *testing.T) {
	fs := afero.NewMemMapFs()
	manifest := `{
		"name": "arcade",
		"sounds": {
			"click.wav": "sfx/coin.wav",
			"error.wav": "/abs/buzz.wav",
			"notify.wav": "https://cdn.example.com/ding.wav"
		}
	}`
	if err := afero.WriteFile(fs, "/themes/arcade.json", []byte(manifest), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	mapper, err := LoadJSONMapper(fs, "/themes/arcade.json")
	if err != nil {
		t.Fatalf("LoadJSONMapper failed: %v", err)
	}

	if mapper.Name() != "arcade" {
		t.Errorf("Name = %q, want arcade", mapper.Name())
	}

	t.Run("relative target resolved against manifest dir", func(t *testing.T) {
		candidates, _ := mapper.MapPath("click.wav")
		want := filepath.Join("/themes", "sfx/coin.wav")
		if len(candidates) != 1 || candidates[0] != want {
			t.Errorf("candidates = %v, want [%s]", candidates, want)
		}
	})

	t.Run("absolute target kept as-is", func(t *testing.T) {
		candidates, _ := mapper.MapPath("error.wav")
		if len(candidates) != 1 || candidates[0] != "/abs/buzz.wav" {
			t.Errorf("candidates = %v, want [/abs/buzz.wav]", candidates)
		}
	})

	t.Run("remote target kept as-is", func(t *testing.T) {
		candidates, _ := mapper.MapPath("notify.wav")
		if len(candidates) != 1 || candidates[0] != "https://cdn.example.com/ding.wav" {
			t.Errorf("candidates = %v, want the remote URL", candidates)
		}
	})
}

func TestLoadJSONMapperDefaultsNameFromFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/themes/retro.json", []byte(`{"sounds": {}}`), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	mapper, err := LoadJSONMapper(fs, "/themes/retro.json")
	if err != nil {
		t.Fatalf("LoadJSONMapper failed: %v", err)
	}
	if mapper.Name() != "retro" {
		t.Errorf("Name = %q, want retro", mapper.Name())
	}
}

func TestLoadJSONMapperErrors(t *testing.T) {
	fs := afero.NewMemMapFs()

	t.Run("missing manifest", func(t *testing.T) {
		if _, err := LoadJSONMapper(fs, "/themes/missing.json"); err == nil {
			t.Error("expected error for missing manifest")
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		afero.WriteFile(fs, "/themes/broken.json", []byte("{not json"), 0644)
		if _, err := LoadJSONMapper(fs, "/themes/broken.json"); err == nil {
			t.Error("expected error for malformed manifest")
		}
	})
}

func TestCreateMapper(t *testing.T) {
	fs := afero.NewMemMapFs()
	fs.MkdirAll("/themes/mechanical", 0755)
	afero.WriteFile(fs, "/themes/arcade.json", []byte(`{"name":"arcade","sounds":{}}`), 0644)

	t.Run("json reference loads a manifest", func(t *testing.T) {
		mapper, err := CreateMapper(fs, "/themes/arcade.json", nil)
		if err != nil {
			t.Fatalf("CreateMapper failed: %v", err)
		}
		if mapper.Type() != "json" {
			t.Errorf("Type = %q, want json", mapper.Type())
		}
	})

	t.Run("existing directory goes first", func(t *testing.T) {
		mapper, err := CreateMapper(fs, "/themes/mechanical", []string{"/fallback"})
		if err != nil {
			t.Fatalf("CreateMapper failed: %v", err)
		}
		candidates, _ := mapper.MapPath("click.wav")
		if len(candidates) != 2 {
			t.Fatalf("candidates = %v, want 2", candidates)
		}
		if candidates[0] != filepath.Join("/themes/mechanical", "click.wav") {
			t.Errorf("first candidate = %q, want theme directory", candidates[0])
		}
	})

	t.Run("nonexistent directory relies on base paths", func(t *testing.T) {
		mapper, err := CreateMapper(fs, "missing-theme", []string{"/fallback"})
		if err != nil {
			t.Fatalf("CreateMapper failed: %v", err)
		}
		candidates, _ := mapper.MapPath("click.wav")
		if len(candidates) != 1 {
			t.Errorf("candidates = %v, want only the fallback path", candidates)
		}
	})

	t.Run("empty reference", func(t *testing.T) {
		if _, err := CreateMapper(fs, "", nil); err == nil {
			t.Error("expected error for empty theme reference")
		}
	})

	t.Run("no candidate directories at all", func(t *testing.T) {
		if _, err := CreateMapper(fs, "missing-theme", nil); err == nil {
			t.Error("expected error when no directories exist")
		}
	})
}
