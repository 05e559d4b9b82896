package version

import "strings"

// These are set at build time with -ldflags.
var (
	Version   = "dev"
	Built     = ""
	GitCommit = ""
)

type Info struct {
	Version   string `json:"version"`
	Built     string `json:"built,omitempty"`
	GitCommit string `json:"git_commit,omitempty"`
}

func Get() Info {
	return Info{
		Version:   Version,
		Built:     Built,
		GitCommit: GitCommit,
	}
}

// String renders a single human-readable line for the version subcommand.
func (i Info) String() string {
	var b strings.Builder
	b.WriteString("sashboard ")
	b.WriteString(i.Version)
	if i.GitCommit != "" {
		b.WriteString(" (")
		b.WriteString(i.GitCommit)
		b.WriteString(")")
	}
	if i.Built != "" {
		b.WriteString(" built ")
		b.WriteString(i.Built)
	}
	return b.String()
}
