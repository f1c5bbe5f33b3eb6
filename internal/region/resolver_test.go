//go:build !integration

package region_test

import (
	"errors"
	"reflect"
	"testing"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/region"
)

func TestResolver_Resolve(t *testing.T) {
	r := region.NewDefaultResolver()

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"single alias", "Emilia", "EMR"},
		{"case insensitive", "liguria", "LIG"},
		{"canonical code", "vda", "VDA"},
		{"multi-word name", "Valle d'Aosta", "VDA"},
		{"diacritics and typographic apostrophe", "Vallée d’Aoste", "VDA"},
		{"folded diacritics", "vallee", "VDA"},
		{"substring of an alias", "Lomb", "LOM"},
		{"more specific tokens win", "provincia autonoma di Trento", "PAT"},
		{"code beats a substring hit elsewhere", "ven", "VEN"},
		{"noise tokens ignored", "dati per la Toscana", "TOS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Resolve(tc.input)
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tc.input, err)
			}
			if got.Code != tc.want {
				t.Errorf("Resolve(%q) = %s, want %s", tc.input, got.Code, tc.want)
			}
		})
	}

	t.Run("should resolve empty input and national aliases to the whole country", func(t *testing.T) {
		for _, in := range []string{"", "   ", "Italia", "ITA"} {
			got, err := r.Resolve(in)
			if err != nil || !got.IsNational() {
				t.Errorf("Resolve(%q) = %+v, %v", in, got, err)
			}
		}
	})

	t.Run("should report unknown regions", func(t *testing.T) {
		_, err := r.Resolve("Narnia")
		if !errors.Is(err, domain.ErrUnknownRegion) {
			t.Errorf("expected ErrUnknownRegion, got %v", err)
		}
	})

	t.Run("should reject ties deterministically regardless of token order", func(t *testing.T) {
		for _, in := range []string{"Emilia Lombardia", "Lombardia Emilia"} {
			_, err := r.Resolve(in)
			var amb *domain.AmbiguousRegionError
			if !errors.As(err, &amb) {
				t.Fatalf("Resolve(%q): expected AmbiguousRegionError, got %v", in, err)
			}
			if !reflect.DeepEqual(amb.Candidates, []string{"EMR", "LOM"}) {
				t.Errorf("Resolve(%q): candidates %v", in, amb.Candidates)
			}
			if !errors.Is(err, domain.ErrAmbiguousRegion) {
				t.Error("expected error to wrap ErrAmbiguousRegion")
			}
		}
	})

	t.Run("should reject an alias shared by two regions", func(t *testing.T) {
		_, err := r.Resolve("provincia autonoma")
		var amb *domain.AmbiguousRegionError
		if !errors.As(err, &amb) || !reflect.DeepEqual(amb.Candidates, []string{"PAB", "PAT"}) {
			t.Errorf("expected PAB/PAT ambiguity, got %v", err)
		}
	})
}

func TestResolver_Lookup(t *testing.T) {
	r := region.NewDefaultResolver()

	got, ok := r.Lookup("emr")
	if !ok || got.Name != "Emilia-Romagna" {
		t.Errorf("Lookup(emr) = %+v, %v", got, ok)
	}
	if _, ok := r.Lookup("XYZ"); ok {
		t.Error("expected unknown code to miss")
	}
	if codes := r.Codes(); len(codes) != 21 || codes[0] != "ABR" || codes[len(codes)-1] != "VEN" {
		t.Errorf("unexpected code order %v", codes)
	}
}
