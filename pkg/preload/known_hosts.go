package preload

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// knownHostsPath is the TOFU known_hosts file for sftp fetches.
// Isolated from the system ~/.ssh/known_hosts to avoid polluting SSH state.
func knownHostsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "preflight", "known_hosts")
}

// knownHostsMu serializes writes to the known_hosts file.
// Appends are rare (first connection to a new host only), but concurrent
// fetches against different new hosts must not corrupt the file.
var knownHostsMu sync.Mutex

// hostKeyCallback implements a Trust-On-First-Use policy:
//   - Known host with matching key: accept
//   - Known host with changed key: reject with MITM warning
//   - Unknown host: auto-accept and append to the known_hosts file
//
// The file is re-read on each call so keys appended by concurrent
// connections are visible immediately.
func hostKeyCallback() ssh.HostKeyCallback {
	path := knownHostsPath()
	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return fmt.Errorf("sftp: failed to create known_hosts directory: %w", err)
		}

		if _, err := os.Stat(path); err == nil {
			cb, loadErr := knownhosts.New(path)
			if loadErr != nil {
				return fmt.Errorf("sftp: failed to load known_hosts: %w", loadErr)
			}
			err := cb(hostname, remote, key)
			if err == nil {
				return nil
			}
			var keyErr *knownhosts.KeyError
			if errors.As(err, &keyErr) {
				if len(keyErr.Want) > 0 {
					// Key mismatch. Hard reject.
					fp := ssh.FingerprintSHA256(key)
					return fmt.Errorf(
						"sftp: WARNING: host key changed for %s (got %s)\n"+
							"If this is expected, remove the old entry from %s",
						hostname, fp, path,
					)
				}
				// Unknown host: fall through to TOFU accept.
			} else {
				return err
			}
		}

		return appendKnownHost(path, hostname, key)
	}
}

// appendKnownHost writes a new host key entry to the known_hosts file.
// knownhosts.Normalize handles port formatting (22 implicit, [host]:port otherwise).
func appendKnownHost(path, hostname string, key ssh.PublicKey) error {
	knownHostsMu.Lock()
	defer knownHostsMu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("sftp: failed to write known_hosts: %w", err)
	}
	defer f.Close()

	line := knownhosts.Line([]string{knownhosts.Normalize(hostname)}, key)
	_, err = fmt.Fprintln(f, line)
	return err
}
