package tickets

import (
	"fmt"
	"regexp"
)

// A Fixup turns a raw page title into the text we actually want to print for
// a ticket.
type Fixup func(ticket, title string) string

// ReGroupFixup builds a Fixup which matches pattern against the start of the
// title and keeps only the first capture group when it matches. The result
// is always rendered as "#<ticket>: <title>".
func ReGroupFixup(pattern string) (Fixup, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, err
	}

	return func(ticket, title string) string {
		if m := re.FindStringSubmatch(title); len(m) > 1 {
			title = m[1]
		}

		return fmt.Sprintf("#%s: %s", ticket, title)
	}, nil
}

// FormatFixup builds a Fixup which renders the ticket and title through a
// printf format, e.g. "Prop#%s: %s".
func FormatFixup(format string) Fixup {
	return func(ticket, title string) string {
		return fmt.Sprintf(format, ticket, title)
	}
}
