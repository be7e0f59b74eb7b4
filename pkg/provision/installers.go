package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/zorro/takopi-docker/pkg/archive"
	"github.com/zorro/takopi-docker/pkg/manifest"
)

type installFunc func(s *stepContext) error

var installers = map[manifest.Method]installFunc{
	manifest.MethodApt:     installApt,
	manifest.MethodAptRepo: installAptRepo,
	manifest.MethodTarball: installArchive(archive.FormatTarGz),
	manifest.MethodZip:     installArchive(archive.FormatZip),
	manifest.MethodScript:  installScript,
	manifest.MethodNpm:     installNpm,
	manifest.MethodPip:     installPip,
	manifest.MethodCommand: installCommands,
	manifest.MethodEnv:     func(*stepContext) error { return nil },
}

func errUnknownMethod(m manifest.Method) error {
	return fmt.Errorf("%w: no installer for method %q", ErrConfig, m)
}

// stepContext carries one step through its installer.
type stepContext struct {
	ctx     context.Context
	e       *Executor
	step    manifest.Step
	image   manifest.Image
	env     []string
	workDir string
	result  *StepResult
	log     zerolog.Logger
}

func installApt(s *stepContext) error {
	return s.aptInstall(s.step.Packages)
}

func installAptRepo(s *stepContext) error {
	keyring := s.step.Keyring
	if keyring == "" {
		keyring = filepath.Join("/etc/apt/keyrings", s.step.Name+".gpg")
	}

	keyPath := filepath.Join(s.workDir, "repo.key")
	if err := s.fetch(s.step.KeyURL, keyPath, ""); err != nil {
		return err
	}
	if err := s.mkdir(filepath.Dir(keyring)); err != nil {
		return err
	}
	if err := s.run("gpg", "--dearmor", "--yes", "-o", keyring, keyPath); err != nil {
		return err
	}

	sourcesDir := s.e.SourcesDir
	if sourcesDir == "" {
		sourcesDir = DefaultSourcesDir
	}
	line := fmt.Sprintf("deb [signed-by=%s] %s %s\n", keyring, s.step.Repo, s.step.Suite)
	if err := s.writeFile(filepath.Join(sourcesDir, s.step.Name+".list"), []byte(line), 0644); err != nil {
		return err
	}

	return s.aptInstall(s.step.Packages)
}

func installArchive(format archive.Format) installFunc {
	return func(s *stepContext) error {
		archivePath := filepath.Join(s.workDir, "artifact."+string(format))
		if err := s.fetch(s.step.URL, archivePath, s.step.SHA256); err != nil {
			return err
		}
		return s.unpack(format, archivePath)
	}
}

func installScript(s *stepContext) error {
	scriptPath := filepath.Join(s.workDir, "install.sh")
	if err := s.fetch(s.step.URL, scriptPath, s.step.SHA256); err != nil {
		return err
	}
	if !s.e.DryRun {
		if err := os.Chmod(scriptPath, 0755); err != nil {
			return err
		}
	}
	return s.run("bash", scriptPath)
}

func installNpm(s *stepContext) error {
	return s.run("npm", append([]string{"install", "-g"}, s.step.Packages...)...)
}

func installPip(s *stepContext) error {
	return s.run("pip", append([]string{"install", "--user", "--no-cache-dir"}, s.step.Packages...)...)
}

func installCommands(s *stepContext) error {
	for _, c := range s.step.Commands {
		if err := s.shell(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *stepContext) aptInstall(pkgs []string) error {
	if err := s.runEnv(aptEnv, "apt-get", "update"); err != nil {
		return err
	}
	args := append([]string{"install", "-y", "--no-install-recommends"}, pkgs...)
	if err := s.runEnv(aptEnv, "apt-get", args...); err != nil {
		return err
	}
	return s.shell("rm -rf /var/lib/apt/lists/*")
}

var aptEnv = []string{"DEBIAN_FRONTEND=noninteractive"}

// command builds the process for a step, dropping to the image user when the
// step asks for it and the executor runs as root.
func (s *stepContext) command(extraEnv []string, name string, args ...string) Command {
	cmd := Command{
		Name: name,
		Args: args,
		Env:  append(append([]string(nil), s.env...), extraEnv...),
	}
	if !s.step.User {
		return cmd
	}

	cmd.Env = append(cmd.Env, "HOME="+s.image.Home, "USER="+s.image.User)
	if s.image.Home != "" {
		cmd.Dir = s.image.Home
	}
	if s.e.Root {
		wrapped := []string{"-u", s.image.User, "--", "env", "HOME=" + s.image.Home, "USER=" + s.image.User, name}
		cmd.Name = "runuser"
		cmd.Args = append(wrapped, args...)
	}
	return cmd
}

func (s *stepContext) run(name string, args ...string) error {
	return s.runEnv(nil, name, args...)
}

func (s *stepContext) runEnv(extraEnv []string, name string, args ...string) error {
	cmd := s.command(extraEnv, name, args...)
	s.record(cmd.String())
	if s.e.DryRun {
		return nil
	}
	return s.e.Runner.Run(s.ctx, cmd)
}

func (s *stepContext) shell(script string) error {
	return s.run("sh", "-c", script)
}

func (s *stepContext) fetch(url, dest, sha string) error {
	s.record("download " + url)
	if s.e.DryRun {
		return nil
	}

	var next int64 = 25
	return s.e.Fetcher.Download(s.ctx, DownloadOptions{
		URL:      url,
		DestPath: dest,
		SHA256:   sha,
		OnProgress: func(downloaded, total int64) {
			if total <= 0 {
				return
			}
			if pct := downloaded * 100 / total; pct >= next {
				s.log.Debug().Int64("percent", pct).Str("url", url).Msg("downloading")
				next = pct - pct%25 + 25
			}
		},
	})
}

// unpack extracts the archive next to dest and moves the strip directory
// (or the whole archive when strip is empty) into place.
func (s *stepContext) unpack(format archive.Format, archivePath string) error {
	dest := s.step.Dest
	s.record(fmt.Sprintf("extract %s -> %s", filepath.Base(archivePath), dest))
	if s.e.DryRun {
		return nil
	}

	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return err
	}
	staging, err := os.MkdirTemp(parent, "."+filepath.Base(dest)+"-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	if err := archive.Extract(format, archivePath, staging); err != nil {
		return fmt.Errorf("%w: %v", ErrExtract, err)
	}

	src := staging
	if s.step.Strip != "" {
		src = filepath.Join(staging, s.step.Strip)
		info, err := os.Stat(src)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("%w: archive has no top-level directory %q", ErrExtract, s.step.Strip)
		}
	}

	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to replace %s: %w", dest, err)
	}
	if err := os.Rename(src, dest); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(src), err)
	}
	if s.step.Strip == "" {
		return os.Chmod(dest, 0755)
	}
	return nil
}

func (s *stepContext) mkdir(dir string) error {
	s.record("mkdir -p " + dir)
	if s.e.DryRun {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

func (s *stepContext) writeFile(path string, data []byte, perm os.FileMode) error {
	s.record("write " + path)
	if s.e.DryRun {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

func (s *stepContext) record(action string) {
	s.result.Commands = append(s.result.Commands, action)
	s.log.Debug().Msg(action)
}
