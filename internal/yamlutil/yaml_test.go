package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/cartabinaria/course-description-merged/internal/yamlutil"
)

type testManifest struct {
	Name  string   `yaml:"name"`
	Count int      `yaml:"count"`
	Files []string `yaml:"files"`
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		check   func(t *testing.T, v any)
	}{
		{
			name: "valid YAML",
			data: []byte("name: courses\ncount: 2\nfiles:\n  - index.adoc\n  - degree-informatica-2021.adoc"),
			dest: &testManifest{},
			check: func(t *testing.T, v any) {
				m := v.(*testManifest)
				if m.Name != "courses" {
					t.Errorf("Name = %q, want %q", m.Name, "courses")
				}
				if m.Count != 2 {
					t.Errorf("Count = %d, want 2", m.Count)
				}
				if len(m.Files) != 2 || m.Files[0] != "index.adoc" {
					t.Errorf("Files = %v", m.Files)
				}
			},
		},
		{
			name:    "nil data",
			data:    nil,
			dest:    &testManifest{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "empty data",
			data:    []byte{},
			dest:    &testManifest{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("name: test"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
		{
			name:    "invalid YAML syntax",
			data:    []byte("name: [unclosed"),
			dest:    &testManifest{},
			wantErr: errors.New("yamlutil:"), // partial match
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if errors.Is(err, tt.wantErr) {
					return
				}
				if !strings.Contains(err.Error(), tt.wantErr.Error()) {
					t.Fatalf("error = %q, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, tt.dest)
			}
		})
	}
}

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	valid := []byte("name: courses\ncount: 1")
	var m testManifest
	if err := yamlutil.UnmarshalStrict(valid, &m); err != nil {
		t.Fatalf("UnmarshalStrict() on valid input = %v", err)
	}

	unknown := []byte("name: courses\nbogus: field")
	if err := yamlutil.UnmarshalStrict(unknown, &testManifest{}); err == nil {
		t.Fatal("UnmarshalStrict() accepted unknown field, want error")
	}
}

func TestUnmarshal_InputTooLarge(t *testing.T) {
	t.Parallel()

	big := []byte("name: " + strings.Repeat("x", yamlutil.MaxInputSize))
	err := yamlutil.Unmarshal(big, &testManifest{})
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("error = %v, want %v", err, yamlutil.ErrInputTooLarge)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	in := testManifest{Name: "github-pages", Count: 3, Files: []string{"index.html"}}
	data, err := yamlutil.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var out testManifest
	if err := yamlutil.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out.Name != in.Name || out.Count != in.Count || len(out.Files) != 1 {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}
