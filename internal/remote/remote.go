// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package remote uploads backup archives to an SFTP host.
package remote

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/brenoschmidt/toolkit/internal/logging"
)

// Config carries the connection settings from the [remote] config section.
type Config struct {
	Host    string
	Port    int
	User    string
	Path    string
	KeyFile string
	// HostKey is the expected host key in authorized-keys format. An empty
	// value refuses to connect; there is no trust-on-first-use.
	HostKey string
}

// PasswordPrompt asks the user for a password when no key file is
// configured.
type PasswordPrompt func() (string, error)

// transfer is the subset of *sftp.Client the pusher needs. Tests swap in a
// fake.
type transfer interface {
	MkdirAll(path string) error
	Create(path string) (io.WriteCloser, error)
	Rename(oldname, newname string) error
	Close() error
}

// sftpAdapter adapts *sftp.Client to the transfer interface.
type sftpAdapter struct {
	c *sftp.Client
}

func (a *sftpAdapter) MkdirAll(p string) error                 { return a.c.MkdirAll(p) }
func (a *sftpAdapter) Create(p string) (io.WriteCloser, error) { return a.c.Create(p) }
func (a *sftpAdapter) Rename(o, n string) error                { return a.c.Rename(o, n) }
func (a *sftpAdapter) Close() error                            { return a.c.Close() }

// Pusher uploads files over an established SFTP session.
type Pusher struct {
	cfg      Config
	transfer transfer
	closers  []io.Closer
}

// Dial opens the SSH connection and SFTP session. Authentication uses the
// configured key file when present, otherwise the password prompt.
func Dial(cfg Config, prompt PasswordPrompt) (*Pusher, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Path == "" {
		return nil, fmt.Errorf("remote.host, remote.user and remote.path must be configured")
	}

	auth, err := authMethod(cfg, prompt)
	if err != nil {
		return nil, err
	}

	port := cfg.Port
	if port == 0 {
		port = 22
	}
	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", port))

	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: hostKeyCallback(cfg),
		Timeout:         10 * time.Second,
	}

	client, err := ssh.Dial("tcp", addr, sshCfg)
	if err != nil {
		return nil, fmt.Errorf("connection to %s failed: %w", addr, err)
	}
	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create sftp client: %w", err)
	}

	return &Pusher{
		cfg:      cfg,
		transfer: &sftpAdapter{c: sftpClient},
		closers:  []io.Closer{sftpClient, client},
	}, nil
}

// Close tears down the SFTP session and SSH connection.
func (p *Pusher) Close() error {
	var first error
	for _, c := range p.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Upload copies localPath into the remote directory through a temp name and
// rename, so a dropped connection never leaves a truncated archive under
// the final name. It returns the remote path.
func (p *Pusher) Upload(ctx context.Context, localPath string) (string, error) {
	in, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = in.Close() }()

	if err := p.transfer.MkdirAll(p.cfg.Path); err != nil {
		return "", fmt.Errorf("could not create remote directory %s: %w", p.cfg.Path, err)
	}

	name := path.Base(localPath)
	final := path.Join(p.cfg.Path, name)
	tmp := path.Join(p.cfg.Path, fmt.Sprintf(".%s.%d", name, time.Now().UnixNano()))

	out, err := p.transfer.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("could not create remote temp file: %w", err)
	}
	if _, err := io.Copy(out, contextReader{ctx: ctx, r: in}); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("upload failed: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	if err := p.transfer.Rename(tmp, final); err != nil {
		return "", fmt.Errorf("could not move upload into place: %w", err)
	}
	logging.Debugf("uploaded %s to %s", localPath, final)
	return final, nil
}

// authMethod builds the SSH auth method from the config.
func authMethod(cfg Config, prompt PasswordPrompt) (ssh.AuthMethod, error) {
	if cfg.KeyFile != "" {
		keyData, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("could not read key file %s: %w", cfg.KeyFile, err)
		}
		signer, err := ssh.ParsePrivateKey(keyData)
		if err != nil {
			return nil, fmt.Errorf("unable to parse private key: %w", err)
		}
		return ssh.PublicKeys(signer), nil
	}
	if prompt == nil {
		return nil, fmt.Errorf("no remote.key_file configured and no way to prompt for a password")
	}
	password, err := prompt()
	if err != nil {
		return nil, err
	}
	return ssh.Password(password), nil
}

// hostKeyCallback verifies the presented host key against the configured
// one. There is no trust-on-first-use: an unconfigured key is an error with
// guidance rather than a silent accept.
func hostKeyCallback(cfg Config) ssh.HostKeyCallback {
	return func(hostname string, _ net.Addr, key ssh.PublicKey) error {
		host, _, err := net.SplitHostPort(hostname)
		if err != nil {
			host = hostname
		}
		presented := string(ssh.MarshalAuthorizedKey(key))
		if cfg.HostKey == "" {
			return fmt.Errorf("unknown host key for %s. Set remote.host_key in config.toml to:\n%s", host, presented)
		}
		// Keys pasted into config.toml usually lack the trailing newline
		// MarshalAuthorizedKey emits.
		if strings.TrimSpace(cfg.HostKey) != strings.TrimSpace(presented) {
			return fmt.Errorf("host key mismatch for %s\nRemote key presented: %sThis could be a man-in-the-middle attack", host, presented)
		}
		return nil
	}
}

// contextReader cancels an io.Copy when the context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(b []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(b)
}
