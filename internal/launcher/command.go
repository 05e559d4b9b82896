package launcher

import "strings"

// BuildSessionCommand builds the command run inside the detached session:
// source the activation script, then replace the shell with the server
// process. The exec keeps the pane's process the server itself, so the
// session ends when the server exits.
func BuildSessionCommand(activatePath string, argv []string) []string {
	parts := make([]string, 0, 2)
	if strings.TrimSpace(activatePath) != "" {
		parts = append(parts, "source "+shellQuote(activatePath))
	}
	if len(argv) > 0 {
		quoted := make([]string, 0, len(argv)+1)
		quoted = append(quoted, "exec")
		for _, arg := range argv {
			quoted = append(quoted, shellQuote(arg))
		}
		parts = append(parts, strings.Join(quoted, " "))
	}
	if len(parts) == 0 {
		return nil
	}
	return []string{"bash", "-lc", strings.Join(parts, " && ")}
}

// shellQuote single-quotes a string for bash, escaping embedded quotes.
func shellQuote(value string) string {
	if value == "" {
		return "''"
	}
	if !strings.ContainsAny(value, " \t\n'\"\\$`&|;()<>*?[]{}~#") {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
