// Package provision executes an evaluated plan: it installs each runnable step
// in declared order, stops at the first failure, writes agent markers and
// composes the resulting environment.
package provision

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zorro/takopi-docker/pkg/environment"
	"github.com/zorro/takopi-docker/pkg/logging"
	"github.com/zorro/takopi-docker/pkg/manifest"
	"github.com/zorro/takopi-docker/pkg/marker"
	"github.com/zorro/takopi-docker/pkg/plan"
)

// DefaultSourcesDir is where apt-repo steps write their source lists.
const DefaultSourcesDir = "/etc/apt/sources.list.d"

// Recorder receives step outcomes. *metrics.ProvisionMetrics implements it.
type Recorder interface {
	ObserveStep(step, method, status string, d time.Duration)
	RunFinished(at time.Time)
}

// Executor runs plans.
type Executor struct {
	Runner  Runner
	Fetcher Fetcher
	Markers *marker.Store
	Logger  zerolog.Logger
	Metrics Recorder
	Now     func() time.Time

	// DryRun logs every action without executing it.
	DryRun bool

	// Root is true when the process runs as root; steps marked user: true
	// are then run through runuser as the image user.
	Root bool

	// LookupOwner resolves the image user when running as root so markers
	// are owned by it. Defaults to LookupUser.
	LookupOwner func(name string) (uid, gid int, err error)

	// Seeds resolve ${VAR} references in env and path contributions.
	// Defaults to the manifest builtins and arg defaults.
	Seeds map[string]string

	// BaseEnv is the environment commands inherit before composition.
	BaseEnv []string
	// BasePath is the search path placed after every contributed entry.
	BasePath string

	SourcesDir string
	TempDir    string
}

// NewExecutor returns an executor wired to the real system.
func NewExecutor(markers *marker.Store) *Executor {
	basePath := os.Getenv("PATH")
	if basePath == "" {
		basePath = environment.DefaultBasePath
	}
	return &Executor{
		Runner:      &ExecRunner{Stdout: os.Stderr, Stderr: os.Stderr},
		Fetcher:     NewDownloader(nil),
		Markers:     markers,
		Logger:      logging.Logger("provision"),
		Now:         time.Now,
		Root:        os.Geteuid() == 0,
		LookupOwner: LookupUser,
		BaseEnv:     os.Environ(),
		BasePath:    basePath,
		SourcesDir:  DefaultSourcesDir,
	}
}

// Run executes p. On failure the returned report covers every step up to
// and including the failed one, later steps are pending, and the error is a
// *StepError.
func (e *Executor) Run(ctx context.Context, p *plan.Plan) (*Report, error) {
	now := e.Now
	if now == nil {
		now = time.Now
	}

	seeds := e.Seeds
	if seeds == nil {
		seeds = p.Manifest.TemplateVars(p.Manifest.Args.Map())
	}
	composer := environment.NewComposer(seeds)

	report := &Report{
		RunID:     uuid.NewString(),
		Selector:  p.Selector.String(),
		Arch:      p.Arch,
		DryRun:    e.DryRun,
		StartedAt: now(),
		Steps:     make([]StepResult, len(p.Entries)),
	}

	log := e.Logger.With().Str("run", report.RunID).Logger()
	log.Info().
		Str("agent", report.Selector).
		Str("arch", report.Arch).
		Bool("dry_run", e.DryRun).
		Int("steps", len(p.Runnable())).
		Msg("provisioning started")

	for i, entry := range p.Entries {
		res := &report.Steps[i]
		*res = StepResult{
			Name:    entry.Step.Name,
			Phase:   string(entry.Step.Phase),
			Method:  string(entry.Step.Method),
			Agent:   entry.Step.When.Agent,
			Status:  StatusPending,
			Reason:  entry.Reason,
			Warning: entry.Warning,
		}
		if !entry.Runs() {
			res.Status = StatusSkipped
		}
	}

	var runErr *StepError
	for i, entry := range p.Entries {
		res := &report.Steps[i]
		stepLog := log.With().Str("step", entry.Step.Name).Logger()

		if !entry.Runs() {
			if entry.Reason == plan.ReasonArchitecture {
				stepLog.Warn().Str("arch", p.Arch).Strs("supported", entry.Step.When.Arch).Msg(entry.Warning)
			} else {
				stepLog.Debug().Str("reason", string(entry.Reason)).Msg("step skipped")
			}
			e.observe(res)
			continue
		}

		if err := ctx.Err(); err != nil {
			runErr = &StepError{Step: entry.Step.Name, Kind: KindExit, Err: err}
			res.Status = StatusFailed
			res.Error = runErr.Error()
			res.ErrorKind = runErr.Kind
			break
		}

		// A step's contributions are visible to its own commands.
		composer.Apply(entry)
		env := composer.Compose(e.BasePath).Overlay(e.BaseEnv)

		stepLog.Info().Str("method", res.Method).Str("phase", res.Phase).Msg("running step")
		start := now()
		err := e.runStep(&stepContext{
			ctx:    ctx,
			e:      e,
			step:   entry.Step,
			image:  p.Manifest.Image,
			env:    env,
			result: res,
			log:    stepLog,
		})
		if err == nil && entry.Step.Marker && entry.Step.IsAgent() {
			e.resolveMarkerOwner(stepLog, p.Manifest.Image.User)
			err = e.touchMarker(res, entry.Step.When.Agent, now())
		}
		res.Duration = now().Sub(start)

		if err != nil {
			runErr = classify(entry.Step.Name, err)
			res.Status = StatusFailed
			res.Error = runErr.Err.Error()
			res.ErrorKind = runErr.Kind
			e.observe(res)
			stepLog.Error().Err(runErr.Err).Str("kind", string(runErr.Kind)).Msg("step failed")
			break
		}

		res.Status = StatusRan
		e.observe(res)
		stepLog.Info().Dur("took", res.Duration).Msg("step complete")
	}

	report.Env = composer.Compose(e.BasePath)
	report.FinishedAt = now()
	if e.Metrics != nil {
		e.Metrics.RunFinished(report.FinishedAt)
	}

	if runErr != nil {
		log.Error().Int("pending", report.Count(StatusPending)).Msg("provisioning aborted")
		return report, runErr
	}

	log.Info().
		Int("ran", report.Count(StatusRan)).
		Int("skipped", report.Count(StatusSkipped)).
		Dur("took", report.Duration()).
		Msg("provisioning complete")
	return report, nil
}

func (e *Executor) runStep(s *stepContext) error {
	install, ok := installers[s.step.Method]
	if !ok {
		return &StepError{Step: s.step.Name, Kind: KindConfig, Err: errUnknownMethod(s.step.Method)}
	}

	if !e.DryRun {
		dir, err := os.MkdirTemp(e.TempDir, "takopi-"+s.step.Name+"-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)
		// User-run installers read their scripts from here.
		if err := os.Chmod(dir, 0755); err != nil {
			return err
		}
		s.workDir = dir
	} else {
		s.workDir = filepath.Join(os.TempDir(), "takopi-"+s.step.Name)
	}

	if err := install(s); err != nil {
		return err
	}
	if s.step.Method == manifest.MethodCommand {
		return nil
	}
	for _, c := range s.step.Commands {
		if err := s.shell(c); err != nil {
			return err
		}
	}
	return nil
}

// LookupUser returns the numeric uid and gid of the named system user.
func LookupUser(name string) (int, int, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return -1, -1, err
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return -1, -1, fmt.Errorf("user %s: uid %q: %w", name, u.Uid, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return -1, -1, fmt.Errorf("user %s: gid %q: %w", name, u.Gid, err)
	}
	return uid, gid, nil
}

// resolveMarkerOwner sets the marker store owner to the image user. The user
// is created by an earlier step, so the lookup happens at the first marker.
func (e *Executor) resolveMarkerOwner(log zerolog.Logger, name string) {
	if !e.Root || e.DryRun || e.Markers == nil || e.Markers.UID >= 0 || name == "" {
		return
	}
	lookup := e.LookupOwner
	if lookup == nil {
		lookup = LookupUser
	}
	uid, gid, err := lookup(name)
	if err != nil {
		log.Warn().Err(err).Str("user", name).Msg("markers stay owned by root")
		return
	}
	e.Markers.UID, e.Markers.GID = uid, gid
}

func (e *Executor) touchMarker(res *StepResult, agentID string, at time.Time) error {
	if e.Markers == nil {
		return nil
	}
	if e.DryRun {
		res.Commands = append(res.Commands, "touch "+e.Markers.Path(agentID))
		return nil
	}
	path, err := e.Markers.Touch(agentID, at)
	if err != nil {
		return err
	}
	res.Marker = path
	return nil
}

func (e *Executor) observe(res *StepResult) {
	if e.Metrics == nil {
		return
	}
	e.Metrics.ObserveStep(res.Name, res.Method, string(res.Status), res.Duration)
}
