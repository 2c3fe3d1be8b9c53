package symbols

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/apex/log"
)

// maxLineSize bounds a single line of nm output.
const maxLineSize = 4 * 1024 * 1024

// RunNM lists the symbols of binary with the nm executable, streaming its
// output through ParseNM.
func RunNM(nm, binary, stripPrefix string) (Set, error) {
	cmd := exec.Command(nm, binary)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	log.WithField("cmd", cmd.String()).Debug("listing symbols")
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", nm, err)
	}

	syms, perr := ParseNM(stdout, stripPrefix)
	if perr != nil {
		// nm blocks on a full pipe until its output is consumed
		io.Copy(io.Discard, stdout)
	}
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("%s %s failed: %w: %s", nm, binary, err, strings.TrimSpace(stderr.String()))
	}
	if perr != nil {
		return nil, perr
	}

	return syms, nil
}

// ParseNM reads nm output, '<addr> <type> <name>' per line, and returns the
// names of the external text ('T') symbols with stripPrefix removed.
func ParseNM(r io.Reader, stripPrefix string) (Set, error) {
	syms := make(Set)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 3 || fields[1] != "T" {
			continue
		}
		syms.Add(Normalize(fields[2], stripPrefix))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read nm output: %w", err)
	}
	return syms, nil
}
