package cli

import (
	"testing"

	"github.com/spf13/afero"
)

func TestDiscoverThemes(t *testing.T) {
	fs := afero.NewMemMapFs()
	fs.MkdirAll("/user/themes/mechanical", 0755)
	fs.MkdirAll("/user/themes/arcade", 0755)
	fs.MkdirAll("/system/themes/default", 0755)
	afero.WriteFile(fs, "/system/themes/retro.json", []byte(`{}`), 0644)
	afero.WriteFile(fs, "/system/themes/notes.txt", []byte("not a theme"), 0644)

	themes := discoverThemes(fs, []string{"/user/themes", "/system/themes"}, "mechanical")

	if len(themes) != 4 {
		t.Fatalf("found %d themes, want 4: %+v", len(themes), themes)
	}

	// Sorted by name
	wantNames := []string{"arcade", "default", "mechanical", "retro"}
	for i, want := range wantNames {
		if themes[i].Name != want {
			t.Errorf("themes[%d].Name = %q, want %q", i, themes[i].Name, want)
		}
	}

	byName := make(map[string]ThemeInfo)
	for _, theme := range themes {
		byName[theme.Name] = theme
	}

	if byName["retro"].Type != "json" {
		t.Errorf("retro type = %q, want json", byName["retro"].Type)
	}
	if byName["mechanical"].Type != "directory" {
		t.Errorf("mechanical type = %q, want directory", byName["mechanical"].Type)
	}
	if !byName["mechanical"].Active {
		t.Error("mechanical should be marked active")
	}
	if byName["arcade"].Active {
		t.Error("arcade should not be marked active")
	}
}

func TestDiscoverThemesFirstHitWins(t *testing.T) {
	fs := afero.NewMemMapFs()
	fs.MkdirAll("/user/themes/default", 0755)
	fs.MkdirAll("/system/themes/default", 0755)

	themes := discoverThemes(fs, []string{"/user/themes", "/system/themes"}, "")

	if len(themes) != 1 {
		t.Fatalf("found %d themes, want 1 after dedupe", len(themes))
	}
	if themes[0].Path != "/user/themes/default" {
		t.Errorf("Path = %q, want the higher-priority base path", themes[0].Path)
	}
}

func TestDiscoverThemesSkipsUnreadablePaths(t *testing.T) {
	fs := afero.NewMemMapFs()
	fs.MkdirAll("/real/themes/default", 0755)

	themes := discoverThemes(fs, []string{"/missing", "/real/themes"}, "")

	if len(themes) != 1 || themes[0].Name != "default" {
		t.Errorf("themes = %+v, want just default", themes)
	}
}

func TestDiscoverThemesEmpty(t *testing.T) {
	themes := discoverThemes(afero.NewMemMapFs(), []string{"/nowhere"}, "")
	if len(themes) != 0 {
		t.Errorf("themes = %+v, want none", themes)
	}
}
