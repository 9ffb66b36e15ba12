// Package entrypoint prepares the development container and keeps it alive.
package entrypoint

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"nerisdash/internal/deploy"
	"nerisdash/pkg/logger"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

// DefaultRegion is set when AWS_DEFAULT_REGION is empty.
const DefaultRegion = "us-east-1"

// Options configures the container preparation.
type Options struct {
	// Home holds the config root and the .ssh directory.
	Home string
	// Workdir is where pre-commit hooks are installed.
	Workdir string
	// KeyComment labels the generated SSH key.
	KeyComment string
	// PreCommit installs the git hooks; empty skips the step.
	PreCommit []string
	Getenv    func(string) string
	Setenv    func(string, string) error
}

// Environment is what Prepare set up.
type Environment struct {
	HostUser  string
	ConfigDir string
	Region    string
	PublicKey string
	// KeyCreated is false when an existing key was kept.
	KeyCreated bool
}

func (o *Options) defaults() error {
	if o.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not find home directory: %w", err)
		}
		o.Home = home
	}
	if o.Getenv == nil {
		o.Getenv = os.Getenv
	}
	if o.Setenv == nil {
		o.Setenv = os.Setenv
	}
	if o.KeyComment == "" {
		o.KeyComment = "nerisdash"
	}

	return nil
}

// Prepare provisions the per-user config directory, normalises HOST_USER,
// defaults the AWS region, creates an SSH key once and installs the
// pre-commit hooks. Running it again keeps the existing key.
func Prepare(ctx context.Context, runner deploy.Runner, opts Options) (*Environment, error) {
	if err := opts.defaults(); err != nil {
		return nil, err
	}

	env := &Environment{HostUser: strings.ReplaceAll(opts.Getenv("HOST_USER"), ".", "_")}
	if env.HostUser == "" {
		env.HostUser = "root"
	}
	if err := opts.Setenv("HOST_USER", env.HostUser); err != nil {
		return nil, fmt.Errorf("could not set HOST_USER: %w", err)
	}

	env.ConfigDir = filepath.Join(opts.Home, ".config", "nerisdash", env.HostUser)
	if err := os.MkdirAll(env.ConfigDir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	env.Region = opts.Getenv("AWS_DEFAULT_REGION")
	if env.Region == "" {
		env.Region = DefaultRegion
		if err := opts.Setenv("AWS_DEFAULT_REGION", env.Region); err != nil {
			return nil, fmt.Errorf("could not set AWS_DEFAULT_REGION: %w", err)
		}
	}

	pub, created, err := EnsureSSHKey(filepath.Join(opts.Home, ".ssh"), opts.KeyComment)
	if err != nil {
		return nil, err
	}
	env.PublicKey, env.KeyCreated = pub, created

	if len(opts.PreCommit) > 0 {
		if err := runner.Run(ctx, opts.Workdir, opts.PreCommit[0], opts.PreCommit[1:]...); err != nil {
			return nil, fmt.Errorf("could not install pre-commit hooks: %w", err)
		}
	}

	logger.Info(ctx, "container prepared",
		zap.String("host_user", env.HostUser),
		zap.String("config_dir", env.ConfigDir),
		zap.String("region", env.Region),
		zap.Bool("key_created", env.KeyCreated))

	return env, nil
}

// EnsureSSHKey writes an ed25519 key pair to dir/id_ed25519 unless the
// public key already exists. It returns the authorized_keys line of the key.
func EnsureSSHKey(dir, comment string) (string, bool, error) {
	privPath := filepath.Join(dir, "id_ed25519")
	pubPath := privPath + ".pub"

	existing, err := os.ReadFile(pubPath) //nolint: gosec
	switch {
	case err == nil:
		return strings.TrimSpace(string(existing)), false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return "", false, fmt.Errorf("could not read public key: %w", err)
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", false, fmt.Errorf("could not generate key: %w", err)
	}
	block, err := ssh.MarshalPrivateKey(priv, comment)
	if err != nil {
		return "", false, fmt.Errorf("could not encode private key: %w", err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return "", false, fmt.Errorf("could not encode public key: %w", err)
	}
	line := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub))) + " " + comment

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", false, fmt.Errorf("could not create ssh dir: %w", err)
	}
	if err := os.WriteFile(privPath, pem.EncodeToMemory(block), 0o600); err != nil {
		return "", false, fmt.Errorf("could not write private key: %w", err)
	}
	if err := os.WriteFile(pubPath, []byte(line+"\n"), 0o644); err != nil { //nolint: gosec
		return "", false, fmt.Errorf("could not write public key: %w", err)
	}

	return line, true, nil
}

// Run prepares the container then blocks until ctx is done.
func Run(ctx context.Context, runner deploy.Runner, opts Options) error {
	if _, err := Prepare(ctx, runner, opts); err != nil {
		return err
	}

	logger.Info(ctx, "waiting for shutdown")
	<-ctx.Done()

	return nil
}
