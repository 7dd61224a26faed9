package tickets

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// rtProvider returns the title of a request-tracker ticket by shelling out
// to the rt CLI with a per-provider RTCONFIG.
type rtProvider struct {
	baseProvider

	rtrc string
}

func newRTProvider(base baseProvider, rtconfig string) (*rtProvider, error) {
	path := rtconfig
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		path = filepath.Join(home, path[2:])
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	return &rtProvider{
		baseProvider: base,
		rtrc:         path,
	}, nil
}

func (p *rtProvider) Lookup(ticket string) (string, error) {
	// rt takes the id as a query, so make sure we only ever pass a number.
	number, err := strconv.Atoi(ticket)
	if err != nil {
		return "", ErrTicketNotFound
	}

	cmd := exec.Command("rt", "ls", "-i", strconv.Itoa(number), "-s")
	cmd.Env = append(os.Environ(), "RTCONFIG="+p.rtrc)

	out, err := cmd.Output()
	if err != nil {
		return "", ErrTicketNotFound
	}

	title := string(out)
	if strings.TrimSpace(title) == "No matching results." {
		return "", ErrTicketNotFound
	}

	return p.render(ticket, title, ""), nil
}
