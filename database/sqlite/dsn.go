package sqlite

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/dbsimple/dbsimple-go/database"
)

// ErrNoDatabase is returned for descriptors without a database path.
var ErrNoDatabase = errors.New("could not find database file in descriptor")

// DSN builds the go-sqlite3 data source name for desc. Timeout becomes the
// busy timeout; Options are passed through as URI parameters.
func DSN(desc database.Descriptor) (string, error) {
	if desc.Database == "" {
		return "", ErrNoDatabase
	}

	params := url.Values{}
	for k, v := range desc.Options {
		params.Set(k, v)
	}
	if desc.Timeout > 0 && params.Get("_busy_timeout") == "" {
		params.Set("_busy_timeout", strconv.FormatInt(desc.Timeout.Milliseconds(), 10))
	}

	if len(params) == 0 {
		return desc.Database, nil
	}
	return "file:" + desc.Database + "?" + params.Encode(), nil
}
