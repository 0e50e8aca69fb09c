package wiring

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sophialabs/replayd/internal/domain/match"
	"github.com/sophialabs/replayd/internal/domain/stub"
	"github.com/sophialabs/replayd/internal/domain/trace"
	inboundhttp "github.com/sophialabs/replayd/internal/infrastructure/inbound/http"
	"github.com/sophialabs/replayd/internal/infrastructure/outbound/clock"
	"github.com/sophialabs/replayd/internal/infrastructure/outbound/filesystem"
	"github.com/sophialabs/replayd/internal/infrastructure/outbound/memstore"
	"github.com/sophialabs/replayd/internal/infrastructure/outbound/ratelimit"
	"github.com/sophialabs/replayd/internal/infrastructure/outbound/template"
	"github.com/sophialabs/replayd/internal/infrastructure/ports"
	"github.com/sophialabs/replayd/internal/infrastructure/services"
	"github.com/sophialabs/replayd/internal/infrastructure/usecases"
)

// Params holds the subset of configuration needed to construct infrastructure components.
type Params struct {
	RootDir        string // empty disables file seeding
	TraceSize      int
	RateLimiterTTL time.Duration
	FallbackStatus int
	FallbackBody   string
	Logger         ports.Logger
}

// Container owns the construction and lifecycle of all infrastructure components.
type Container struct {
	logger           ports.Logger
	server           *inboundhttp.Server
	store            stub.Store
	loadUC           *usecases.LoadStubsUseCase
	rateLimiterStore *ratelimit.TokenBucketStore
	traceBuf         *trace.RingBuffer
	closeOnce        sync.Once
}

// New constructs all infrastructure components. Fallible operations run
// before goroutine-starting ones to avoid goroutine leaks on early failure.
func New(p Params) (*Container, error) {
	var source stub.DefinitionSource
	if p.RootDir != "" {
		if _, err := os.Stat(p.RootDir); err != nil {
			return nil, fmt.Errorf("failed to access stub directory: %w", err)
		}
		repo, err := filesystem.NewYAMLRepository(p.RootDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create repository: %w", err)
		}
		source = repo
	}

	compiler := services.NewCompiler(template.NewRegistry())

	// Start background goroutine only after all fallible ops succeed.
	rateLimiterStore := ratelimit.NewTokenBucketStore(p.RateLimiterTTL)

	clk := clock.New()
	traceBuf := trace.NewRingBuffer(p.TraceSize)
	matcher := match.NewMatcher()
	store := memstore.New()

	builtins := make(stub.Builtins)
	builtins.Register("GET", "/__ping", &stub.Result{
		Status: 200,
		Body:   map[string]any{"status": "ok"},
	})

	fallback := stub.Result{Status: p.FallbackStatus}
	if p.FallbackBody != "" {
		fallback.Body = p.FallbackBody
	}

	resolveUC := usecases.NewResolveUseCase(matcher, store, builtins, fallback, clk, rateLimiterStore, p.Logger, traceBuf)
	loadUC := usecases.NewLoadStubsUseCase(source, compiler, store, p.Logger)
	registerUC := usecases.NewRegisterStubUseCase(compiler, store, p.Logger)

	server := inboundhttp.NewServer(resolveUC, loadUC, registerUC, store, traceBuf, p.Logger)

	return &Container{
		logger:           p.Logger,
		server:           server,
		store:            store,
		loadUC:           loadUC,
		rateLimiterStore: rateLimiterStore,
		traceBuf:         traceBuf,
	}, nil
}

// Close releases resources held by the container. It is idempotent.
func (c *Container) Close() {
	c.closeOnce.Do(func() {
		c.rateLimiterStore.Stop()
	})
}

// Logger returns the logger passed at construction time.
func (c *Container) Logger() ports.Logger {
	return c.logger
}

// Server returns the HTTP responder server.
func (c *Container) Server() *inboundhttp.Server {
	return c.server
}

// Store returns the stub registry.
func (c *Container) Store() stub.Store {
	return c.store
}

// LoadStubsUseCase returns the use case for loading file-seeded stubs.
func (c *Container) LoadStubsUseCase() *usecases.LoadStubsUseCase {
	return c.loadUC
}

// TraceBuf returns the resolution trace ring buffer.
func (c *Container) TraceBuf() *trace.RingBuffer {
	return c.traceBuf
}
