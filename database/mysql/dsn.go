package mysql

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/dbsimple/dbsimple-go/database"
	gomysql "github.com/go-sql-driver/mysql"
)

const (
	// DefaultEncoding is the connection charset used when the descriptor sets none.
	DefaultEncoding = "utf8"
	// DefaultSocketUser is the login used on socket transports without a user.
	DefaultSocketUser = "root"
)

// ErrNoTransport is returned for descriptors without a host or socket.
var ErrNoTransport = errors.New("could not find hostname nor socket in descriptor")

// DSN builds the go-sql-driver/mysql data source name for desc.
func DSN(desc database.Descriptor) (string, error) {
	cfg := gomysql.NewConfig()

	switch {
	case desc.Socket != "":
		cfg.Net = "unix"
		cfg.Addr = desc.Socket
		cfg.User = desc.User
		if cfg.User == "" {
			cfg.User = DefaultSocketUser
		}
	case desc.Host != "":
		cfg.Net = "tcp"
		cfg.Addr = desc.Host
		if desc.Port > 0 {
			cfg.Addr = net.JoinHostPort(desc.Host, strconv.Itoa(desc.Port))
		}
		cfg.User = desc.User
	default:
		return "", ErrNoTransport
	}

	cfg.Passwd = desc.Password
	cfg.DBName = strings.TrimPrefix(desc.Database, "/")
	cfg.Timeout = desc.Timeout

	cfg.Params = make(map[string]string, len(desc.Options)+1)
	for k, v := range desc.Options {
		cfg.Params[k] = v
	}
	enc := desc.Encoding
	if enc == "" {
		enc = DefaultEncoding
	}
	cfg.Params["charset"] = enc

	return cfg.FormatDSN(), nil
}

func transport(desc database.Descriptor) string {
	if desc.Socket != "" {
		return "unix:" + desc.Socket
	}
	return "tcp:" + desc.Host
}
