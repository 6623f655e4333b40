// Package cmdline converts argument vectors to and from the flat command-line
// strings accepted by the Windows process launcher.
//
// The encoding follows the msvcrt/CommandLineToArgvW convention: backslashes
// only escape when they directly precede a double quote, and a run of
// backslashes anywhere else is taken literally.
package cmdline

import "strings"

// Quote returns the encoding of a single argument. Arguments without spaces,
// tabs or double quotes are returned unchanged; the empty argument becomes "".
func Quote(arg string) string {
	if arg == "" {
		return `""`
	}
	if !strings.ContainsAny(arg, " \t\"") {
		return arg
	}

	var b strings.Builder
	b.Grow(len(arg) + 2)
	b.WriteByte('"')
	for i := 0; i < len(arg); i++ {
		switch c := arg[i]; c {
		case '\\':
			n := 1
			for i+1 < len(arg) && arg[i+1] == '\\' {
				n++
				i++
			}
			// A run that ends the argument or meets a quote has to be
			// doubled, otherwise it would escape that quote.
			if i+1 == len(arg) || arg[i+1] == '"' {
				n *= 2
			}
			b.WriteString(strings.Repeat(`\`, n))
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Join quotes every argument and joins them with single spaces.
func Join(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = Quote(a)
	}
	return strings.Join(quoted, " ")
}

// JoinRaw joins args with single spaces without any quoting. Arguments
// containing whitespace or quotes will not survive a Split.
func JoinRaw(args []string) string {
	return strings.Join(args, " ")
}

// Split decodes a command line into its arguments. It implements the
// argument (not program name) rules: space and tab separate arguments
// outside quotes, 2n backslashes before a quote yield n backslashes and a
// quote toggle, 2n+1 yield n backslashes and a literal quote, and a doubled
// quote inside a quoted region yields a literal quote.
func Split(line string) []string {
	args := []string{}
	var b strings.Builder
	started := false
	quoted := false

	for i := 0; i < len(line); {
		c := line[i]
		switch {
		case (c == ' ' || c == '\t') && !quoted:
			if started {
				args = append(args, b.String())
				b.Reset()
				started = false
			}
			i++
		case c == '\\':
			n := 0
			for i < len(line) && line[i] == '\\' {
				n++
				i++
			}
			started = true
			if i < len(line) && line[i] == '"' {
				b.WriteString(strings.Repeat(`\`, n/2))
				if n%2 == 1 {
					b.WriteByte('"')
					i++
				}
				continue
			}
			b.WriteString(strings.Repeat(`\`, n))
		case c == '"':
			started = true
			i++
			if quoted && i < len(line) && line[i] == '"' {
				b.WriteByte('"')
				i++
				continue
			}
			quoted = !quoted
		default:
			started = true
			b.WriteByte(c)
			i++
		}
	}
	if started {
		args = append(args, b.String())
	}
	return args
}
