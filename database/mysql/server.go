package mysql

import (
	"context"
	"strings"

	"github.com/dbsimple/dbsimple-go/internal/debug"
	version "github.com/hashicorp/go-version"
)

const probeQuery = "SELECT VERSION(), @@SESSION.sql_mode"

// calcFoundRowsDeprecation is the first MySQL release deprecating
// SQL_CALC_FOUND_ROWS and FOUND_ROWS().
var calcFoundRowsDeprecation = version.Must(version.NewVersion("8.0.17"))

type serverInfo struct {
	raw                string
	version            *version.Version
	mariaDB            bool
	noBackslashEscapes bool
}

// probeServer reads the server version and SQL mode once after connecting.
// A failing probe leaves the defaults in place.
func (a *Adapter) probeServer(ctx context.Context) {
	var raw, mode string
	if err := a.conn.QueryRowContext(ctx, probeQuery).Scan(&raw, &mode); err != nil {
		debug.Debug("failed to probe mysql server", "error", err)
		return
	}
	a.server = parseServerInfo(raw, mode)
}

func parseServerInfo(raw, mode string) serverInfo {
	info := serverInfo{
		raw:     raw,
		mariaDB: strings.Contains(strings.ToLower(raw), "mariadb"),
	}

	num := raw
	if i := strings.IndexAny(raw, "-+ "); i >= 0 {
		num = raw[:i]
	}
	if v, err := version.NewVersion(num); err == nil {
		info.version = v
	}

	for _, m := range strings.Split(mode, ",") {
		if strings.EqualFold(strings.TrimSpace(m), "NO_BACKSLASH_ESCAPES") {
			info.noBackslashEscapes = true
		}
	}
	return info
}

func (s serverInfo) deprecatesCalcFoundRows() bool {
	return s.version != nil && !s.mariaDB && s.version.GreaterThanOrEqual(calcFoundRowsDeprecation)
}
