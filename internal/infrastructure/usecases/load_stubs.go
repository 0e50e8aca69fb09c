package usecases

import (
	"context"
	"fmt"

	"github.com/sophialabs/replayd/internal/domain/stub"
	"github.com/sophialabs/replayd/internal/infrastructure/ports"
	"github.com/sophialabs/replayd/internal/infrastructure/services"
)

// LoadStubsUseCase loads definitions from the seed source, compiles them, and
// swaps them into the store. Stubs registered at runtime survive a reload.
type LoadStubsUseCase struct {
	source   stub.DefinitionSource
	compiler *services.Compiler
	store    stub.Store
	logger   ports.Logger
}

// NewLoadStubsUseCase creates a new use case. source may be nil when no stub
// directory is configured; Execute is then a no-op.
func NewLoadStubsUseCase(source stub.DefinitionSource, compiler *services.Compiler, store stub.Store, logger ports.Logger) *LoadStubsUseCase {
	return &LoadStubsUseCase{
		source:   source,
		compiler: compiler,
		store:    store,
		logger:   logger,
	}
}

// Execute reloads the seeded stubs. Definitions that fail to compile are
// skipped with a warning so one bad file cannot take down the rest.
func (uc *LoadStubsUseCase) Execute(ctx context.Context) (int, error) {
	if uc.source == nil {
		return 0, nil
	}

	defs, err := uc.source.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load stub definitions: %w", err)
	}

	compiled := make([]*stub.Stub, 0, len(defs))
	for _, d := range defs {
		s, err := uc.compiler.Compile(d)
		if err != nil {
			uc.logger.Warn("skipping invalid stub definition", "error", err)
			continue
		}
		compiled = append(compiled, s)
	}

	uc.store.Replace(compiled)
	uc.logger.Info("stubs loaded", "count", len(compiled), "skipped", len(defs)-len(compiled))
	return len(compiled), nil
}
