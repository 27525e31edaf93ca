package execx

import "strings"

// QuoteCommand renders args as a shell-escaped command line for debug
// logging, so a logged command can be copy-pasted into a POSIX shell.
func QuoteCommand(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quoteArg(a)
	}
	return strings.Join(quoted, " ")
}

const safeChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789" +
	"@%+=:,./-_"

func quoteArg(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !strings.ContainsRune(safeChars, r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	// Single-quote, with embedded single quotes closed, escaped, reopened.
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
