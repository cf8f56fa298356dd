package location

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"github.com/ironsheep/ramen-tools-mcp/internal/cascade"
	"github.com/ironsheep/ramen-tools-mcp/internal/geo"
)

// DefaultToolTimeout bounds each platform tool invocation.
const DefaultToolTimeout = 10 * time.Second

// ErrToolUnavailable is returned by a ToolRunner when the tool is not
// installed. It matches cascade.ErrUnavailable.
var ErrToolUnavailable = fmt.Errorf("platform tool unavailable: %w", cascade.ErrUnavailable)

// ToolRunner runs an external metadata tool and returns its stdout.
type ToolRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs tools with os/exec.
type ExecRunner struct {
	Timeout time.Duration
}

// Run executes name with args, bounded by r.Timeout.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, ErrToolUnavailable)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultToolTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s timed out after %s", name, timeout)
		}
		return nil, fmt.Errorf("%s failed: %w (%s)", name, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

var (
	sipsLatitude  = regexp.MustCompile(`<key>latitude</key>\s*<real>([+-]?\d+\.?\d*)</real>`)
	sipsLongitude = regexp.MustCompile(`<key>longitude</key>\s*<real>([+-]?\d+\.?\d*)</real>`)
	mdlsLatitude  = regexp.MustCompile(`kMDItemLatitude\s*=\s*([+-]?\d+\.?\d*)`)
	mdlsLongitude = regexp.MustCompile(`kMDItemLongitude\s*=\s*([+-]?\d+\.?\d*)`)
)

// parseSips reads the coordinate from `sips -g allxml` output. sips
// already reports signed decimal degrees.
func parseSips(out []byte) (geo.Coordinate, bool) {
	return parsePair(out, sipsLatitude, sipsLongitude)
}

// parseMdls reads the coordinate from `mdls` output.
func parseMdls(out []byte) (geo.Coordinate, bool) {
	return parsePair(out, mdlsLatitude, mdlsLongitude)
}

func parsePair(out []byte, latRe, lonRe *regexp.Regexp) (geo.Coordinate, bool) {
	lm := latRe.FindSubmatch(out)
	om := lonRe.FindSubmatch(out)
	if lm == nil || om == nil {
		return geo.Coordinate{}, false
	}

	lat, err := strconv.ParseFloat(string(lm[1]), 64)
	if err != nil {
		return geo.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(string(om[1]), 64)
	if err != nil {
		return geo.Coordinate{}, false
	}

	c := geo.Coordinate{Lat: lat, Lon: lon}
	return c, plausible(c)
}
