package orchestration

import (
	"github.com/agbru/crtcalc/internal/config"
	apperrors "github.com/agbru/crtcalc/internal/errors"
	"github.com/agbru/crtcalc/internal/hybrid"
	"github.com/agbru/crtcalc/internal/problems"
)

// SelectProblem builds the problem named by cfg. A problem file takes
// precedence over the inline settings.
func SelectProblem(cfg config.AppConfig) (problems.Problem, error) {
	spec := problems.Spec{Type: cfg.Problem, N: cfg.N, Size: cfg.Size, Seed: cfg.Seed}
	if cfg.ProblemFile != "" {
		loaded, err := problems.LoadSpec(cfg.ProblemFile)
		if err != nil {
			return nil, apperrors.NewConfigError("%v", err)
		}
		spec = loaded
	}
	p, err := problems.Build(spec)
	if err != nil {
		return nil, apperrors.NewConfigError("%v", err)
	}
	return p, nil
}

// ResolveKind returns the kind named by name, or the problem's own kind when
// name is empty.
func ResolveKind(name string, p problems.Problem) (hybrid.Kind, error) {
	if name == "" {
		return p.Kind(), nil
	}
	k, err := hybrid.ParseKind(name)
	if err != nil {
		return 0, apperrors.NewConfigError("%v", err)
	}
	return k, nil
}
