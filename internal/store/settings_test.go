package store

import (
	"testing"

	"github.com/jharlan/notedeck/internal/model"
)

func TestSettingsReadOrDefault(t *testing.T) {
	ss := NewSettingsStore(setupTestDB(t))

	got, err := ss.Get()
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	want := model.DefaultSettings()
	if got.Theme != want.Theme || got.FontSize != want.FontSize {
		t.Errorf("defaults = %+v, want %+v", got, want)
	}
}

func TestSettingsSaveAndReload(t *testing.T) {
	ss := NewSettingsStore(setupTestDB(t))

	saved, err := ss.Save(model.Settings{Theme: "dark", Font: "Inter", FontSize: 14, AccentColor: "#7c3aed"})
	if err != nil {
		t.Fatalf("save settings: %v", err)
	}
	if saved.UpdatedAt.IsZero() {
		t.Error("expected updated_at stamped")
	}

	got, err := ss.Get()
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if got.Theme != "dark" || got.Font != "Inter" || got.FontSize != 14 {
		t.Errorf("reloaded = %+v", got)
	}

	// Second save replaces the singleton, never duplicates it.
	if _, err := ss.Save(model.Settings{Theme: "light", FontSize: 18}); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, _ = ss.Get()
	if got.Theme != "light" || got.FontSize != 18 {
		t.Errorf("after second save = %+v", got)
	}
}
