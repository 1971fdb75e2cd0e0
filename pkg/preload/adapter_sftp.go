package preload

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// loadSFTP fetches one file over sftp using a single stream.
// Auth comes from the URL password and/or opts.SSHKeyPath — never persisted.
func (f *fetchAdapter) loadSFTP(ctx context.Context, u *url.URL, opts Options) error {
	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "22")
	}

	if u.User == nil || u.User.Username() == "" {
		return errors.New("sftp url must include a username")
	}
	user := u.User.Username()

	var auth []ssh.AuthMethod
	if pass, ok := u.User.Password(); ok {
		auth = append(auth, ssh.Password(pass))
	}
	if opts.SSHKeyPath != "" {
		key, err := os.ReadFile(opts.SSHKeyPath)
		if err != nil {
			return err
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return err
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if len(auth) == 0 {
		return errors.New("sftp url needs a password or opts.SSHKeyPath")
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback(),
		Timeout:         30 * time.Second,
	}

	sshConn, err := ssh.Dial("tcp", host, config)
	if err != nil {
		return err
	}
	defer sshConn.Close()

	client, err := sftp.NewClient(sshConn)
	if err != nil {
		return err
	}
	defer client.Close()

	remote, err := client.Open(u.Path)
	if err != nil {
		return err
	}
	defer remote.Close()

	_, err = io.Copy(io.Discard, remote)
	return err
}
