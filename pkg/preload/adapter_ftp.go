package preload

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/url"
	"strings"

	"github.com/jlaffaye/ftp"
)

// loadFTP fetches one file over ftp or ftps using a single stream.
// Credentials from the URL userinfo are used for login but never persisted;
// anonymous auth is the default.
func (f *fetchAdapter) loadFTP(ctx context.Context, u *url.URL, opts Options) error {
	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "21")
	}

	user, pass := "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}

	dialOpts := []ftp.DialOption{ftp.DialWithContext(ctx)}
	if strings.ToLower(u.Scheme) == "ftps" {
		dialOpts = append(dialOpts, ftp.DialWithExplicitTLS(&tls.Config{
			ServerName: u.Hostname(),
		}))
	}

	conn, err := ftp.Dial(host, dialOpts...)
	if err != nil {
		return err
	}
	defer conn.Quit()

	if err := conn.Login(user, pass); err != nil {
		return err
	}

	r, err := conn.Retr(u.Path)
	if err != nil {
		return err
	}
	defer r.Close()

	_, err = io.Copy(io.Discard, r)
	return err
}
