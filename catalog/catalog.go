// Package catalog defines the set of installable editor components and the
// parsing/validation of user-supplied component selections.
package catalog

// Component describes one installable editor or IDE.
type Component struct {
	// ID is the canonical identifier for the component.
	ID string
	// DisplayName is the human-readable name shown in summaries.
	DisplayName string
	// CLI is true for terminal editors that live on the PATH inside the container.
	CLI bool
	// LSP is true for components that consume standalone language servers.
	LSP bool
	// Extensions is true for GUI IDEs with a VS Code-style extension CLI
	// (--list-extensions / --install-extension). These are the wrappable ones.
	Extensions bool
	// Aliases are alternate tokens that resolve to this component.
	Aliases []string
	// Bin is the executable name inside the container.
	Bin string
	// App is the desktop application name used when exporting GUI IDEs.
	App string
}

// GUI reports whether the component is a desktop IDE rather than a terminal editor.
func (c Component) GUI() bool {
	return !c.CLI
}

// Components is the fixed catalog, in catalog order. The "all" selection
// expands to exactly this list.
var Components = []Component{
	{ID: "zed", DisplayName: "Zed", Bin: "zed", App: "Zed"},
	{ID: "vscode", DisplayName: "VS Code", Extensions: true, Aliases: []string{"code"}, Bin: "code", App: "Visual Studio Code"},
	{ID: "cursor", DisplayName: "Cursor", Extensions: true, Bin: "cursor", App: "Cursor"},
	{ID: "jetbrains", DisplayName: "JetBrains Toolbox", Aliases: []string{"toolbox"}, Bin: "jetbrains-toolbox", App: "JetBrains Toolbox"},
	{ID: "neovim", DisplayName: "Neovim", CLI: true, LSP: true, Aliases: []string{"nvim", "vim"}, Bin: "nvim"},
	{ID: "emacs", DisplayName: "Emacs", CLI: true, LSP: true, Bin: "emacs"},
	{ID: "helix", DisplayName: "Helix", CLI: true, LSP: true, Aliases: []string{"hx"}, Bin: "hx"},
}

// LanguageServers is the fixed set of language server ids the image build
// understands.
var LanguageServers = []string{
	"gopls",
	"rust-analyzer",
	"pyright",
	"typescript",
	"bash",
	"lua",
	"clangd",
	"jdtls",
	"yaml",
	"json",
	"html",
	"css",
	"docker",
	"marksman",
}

var (
	byID    map[string]Component
	byAlias map[string]string
	lspSet  map[string]bool
)

func init() {
	byID = make(map[string]Component, len(Components))
	byAlias = make(map[string]string)
	for _, c := range Components {
		byID[c.ID] = c
		for _, a := range c.Aliases {
			byAlias[a] = c.ID
		}
	}
	lspSet = make(map[string]bool, len(LanguageServers))
	for _, ls := range LanguageServers {
		lspSet[ls] = true
	}
}

// Get returns the component for a canonical id.
func Get(id string) (Component, bool) {
	c, ok := byID[id]
	return c, ok
}

// IDs returns all canonical ids in catalog order.
func IDs() []string {
	ids := make([]string, len(Components))
	for i, c := range Components {
		ids[i] = c.ID
	}
	return ids
}

// KnownLanguageServer reports whether id is in the fixed language server set.
func KnownLanguageServer(id string) bool {
	return lspSet[id]
}
