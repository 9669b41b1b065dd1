package catalog

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseSelection(t *testing.T) {
	tests := map[string]struct {
		raw      string
		expected []string
		all      bool
		wantErr  bool
	}{
		"single": {
			raw:      "zed",
			expected: []string{"zed"},
		},
		"mixed case and whitespace": {
			raw:      " Zed, CURSOR ",
			expected: []string{"zed", "cursor"},
		},
		"aliases resolve": {
			raw:      "code,toolbox,nvim",
			expected: []string{"vscode", "jetbrains", "neovim"},
		},
		"dedupe preserves first position": {
			raw:      "vscode,code,zed,vscode",
			expected: []string{"vscode", "zed"},
		},
		"all expands to catalog order": {
			raw:      "all",
			expected: IDs(),
			all:      true,
		},
		"all is case insensitive": {
			raw:      "ALL",
			expected: IDs(),
			all:      true,
		},
		"empty": {
			raw:     "",
			wantErr: true,
		},
		"only separators": {
			raw:     " , ,, ",
			wantErr: true,
		},
		"unknown token": {
			raw:     "zed,sublime",
			wantErr: true,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			sel, err := ParseSelection(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseSelection(%q): expected error, got %v", tc.raw, sel)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSelection(%q): %v", tc.raw, err)
			}
			if !reflect.DeepEqual(sel.IDs, tc.expected) {
				t.Errorf("ParseSelection(%q) = %v, expected %v", tc.raw, sel.IDs, tc.expected)
			}
			if sel.All != tc.all {
				t.Errorf("ParseSelection(%q).All = %v, expected %v", tc.raw, sel.All, tc.all)
			}
		})
	}
}

func TestParseSelectionCanonicalEquivalence(t *testing.T) {
	// Sloppy input must resolve to the same selection as its canonical
	// lowercase trimmed form.
	sloppy, err := ParseSelection("  ZED ,Cursor,  NVIM ")
	if err != nil {
		t.Fatal(err)
	}
	canonical, err := ParseSelection("zed,cursor,neovim")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sloppy, canonical) {
		t.Errorf("sloppy %v != canonical %v", sloppy, canonical)
	}
}

func TestParseSelectionReportsEveryUnknownToken(t *testing.T) {
	_, err := ParseSelection("zed,sublime,cursor,kate")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, tok := range []string{"sublime", "kate"} {
		if !strings.Contains(err.Error(), tok) {
			t.Errorf("error %q does not mention unknown token %q", err, tok)
		}
	}
	if strings.Contains(err.Error(), `"zed"`) || strings.Contains(err.Error(), `"cursor"`) {
		t.Errorf("error %q mentions a known token", err)
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := Resolve("notepad")
	var unknown *UnknownComponentError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownComponentError, got %v", err)
	}
	if unknown.Token != "notepad" {
		t.Errorf("Token = %q, expected %q", unknown.Token, "notepad")
	}
}

func TestParseLanguageServers(t *testing.T) {
	tests := map[string]struct {
		raw      string
		expected []string
		unknown  []string
	}{
		"with uppercase prefix": {
			raw:      "LSP:gopls,rust-analyzer",
			expected: []string{"gopls", "rust-analyzer"},
		},
		"with lowercase prefix": {
			raw:      "lsp:pyright",
			expected: []string{"pyright"},
		},
		"unknown ids kept separate": {
			raw:      "lsp:gopls,cobolls",
			expected: []string{"gopls"},
			unknown:  []string{"cobolls"},
		},
		"dedupe": {
			raw:      "lsp:gopls,GOPLS",
			expected: []string{"gopls"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ids, unknown := ParseLanguageServers(tc.raw)
			if !reflect.DeepEqual(ids, tc.expected) {
				t.Errorf("ids = %v, expected %v", ids, tc.expected)
			}
			if !reflect.DeepEqual(unknown, tc.unknown) {
				t.Errorf("unknown = %v, expected %v", unknown, tc.unknown)
			}
		})
	}
}

func TestAliasesResolveToExactlyOneComponent(t *testing.T) {
	seen := map[string]string{}
	for _, c := range Components {
		for _, a := range c.Aliases {
			if prev, ok := seen[a]; ok {
				t.Errorf("alias %q maps to both %q and %q", a, prev, c.ID)
			}
			seen[a] = c.ID
			if _, ok := byID[a]; ok {
				t.Errorf("alias %q collides with a canonical id", a)
			}
		}
	}
}

func TestSelectionHasLSPCapable(t *testing.T) {
	gui, _ := ParseSelection("zed,vscode")
	if gui.HasLSPCapable() {
		t.Error("GUI-only selection should not be LSP capable")
	}
	cli, _ := ParseSelection("neovim")
	if !cli.HasLSPCapable() {
		t.Error("neovim selection should be LSP capable")
	}
}
