package usecases

import (
	"context"

	"github.com/sophialabs/replayd/internal/domain/stub"
	"github.com/sophialabs/replayd/internal/infrastructure/ports"
	"github.com/sophialabs/replayd/internal/infrastructure/services"
)

// RegisterStubUseCase compiles and registers a single stub definition at
// runtime. Such stubs live in memory only and are gone after a restart.
type RegisterStubUseCase struct {
	compiler *services.Compiler
	store    stub.Store
	logger   ports.Logger
}

// NewRegisterStubUseCase creates a new use case.
func NewRegisterStubUseCase(compiler *services.Compiler, store stub.Store, logger ports.Logger) *RegisterStubUseCase {
	return &RegisterStubUseCase{
		compiler: compiler,
		store:    store,
		logger:   logger,
	}
}

// Execute compiles the definition and adds it to the store, returning the
// registered stub so callers can report its assigned ID.
func (uc *RegisterStubUseCase) Execute(_ context.Context, d *stub.Definition) (*stub.Stub, error) {
	s, err := uc.compiler.Compile(d)
	if err != nil {
		return nil, err
	}
	uc.store.Add(s)
	uc.logger.Info("stub registered", "id", s.ID, "method", s.Method, "path", s.Path)
	return s, nil
}
