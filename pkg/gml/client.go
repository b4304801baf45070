// Package gml fetches the NOAA Global Monitoring Laboratory CO2 record over
// FTP and parses the monthly mean text product.
package gml

import (
	"bufio"
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
)

const (
	defaultHost = "aftp.cmdl.noaa.gov:21"
	defaultPath = "/products/trends/co2/co2_mm_mlo.txt"
)

// Reading is one monthly mean CO2 value.
type Reading struct {
	Year    int
	Month   int
	// PPM is the deseasonalized monthly mean CO2 in parts per million.
	PPM float64
}

// Client retrieves the latest CO2 reading from the GML record.
type Client interface {
	LatestReading(ctx context.Context) (*Reading, error)
}

// Option configures the client.
type Option func(*ftpClient)

// WithAddress overrides the FTP host:port.
func WithAddress(addr string) Option {
	return func(c *ftpClient) { c.host = addr }
}

// WithPath overrides the remote file path.
func WithPath(path string) Option {
	return func(c *ftpClient) { c.path = path }
}

// WithTimeout overrides the FTP dial/transfer timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *ftpClient) { c.timeout = d }
}

type ftpClient struct {
	host    string
	path    string
	timeout time.Duration
}

// NewClient creates a GML FTP client. The archive is anonymous-access.
func NewClient(opts ...Option) Client {
	c := &ftpClient{
		host:    defaultHost,
		path:    defaultPath,
		timeout: 15 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *ftpClient) LatestReading(ctx context.Context) (*Reading, error) {
	host := c.host
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "21")
	}

	conn, err := ftp.Dial(host, ftp.DialWithContext(ctx), ftp.DialWithTimeout(c.timeout))
	if err != nil {
		return nil, eris.Wrapf(err, "gml: dial %s", host)
	}
	defer conn.Quit()

	if err := conn.Login("anonymous", "anonymous"); err != nil {
		return nil, eris.Wrap(err, "gml: anonymous login")
	}

	resp, err := conn.Retr(c.path)
	if err != nil {
		return nil, eris.Wrapf(err, "gml: retrieve %s", c.path)
	}
	defer resp.Close()

	readings, err := ParseMonthlyMeans(resp)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, eris.New("gml: record contained no readings")
	}
	latest := readings[len(readings)-1]
	return &latest, nil
}

// ParseMonthlyMeans parses the co2_mm text product: comment lines start with
// '#', data lines are whitespace-separated with year, month, decimal date and
// the monthly mean in column 4. Unparseable lines are skipped.
func ParseMonthlyMeans(r io.Reader) ([]Reading, error) {
	var out []Reading
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		year, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		month, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		ppm, err := strconv.ParseFloat(fields[3], 64)
		if err != nil || ppm <= 0 {
			// Missing months are flagged with -99.99 sentinels.
			continue
		}
		out = append(out, Reading{Year: year, Month: month, PPM: ppm})
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "gml: scan record")
	}
	return out, nil
}
