package command

import (
	"context"
	"errors"
	"fmt"

	"kitchen-assistant/internal/inventory"
	"kitchen-assistant/internal/metrics"
	"kitchen-assistant/internal/recipe"
	"kitchen-assistant/internal/reconcile"
	"kitchen-assistant/internal/safety"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ErrValidation reports a structurally invalid command. Its message is the
// only detail shown to users.
var ErrValidation = errors.New("invalid request: check the item name and quantity")

// ErrUnsafeContent reports text that failed the content check.
var ErrUnsafeContent = errors.New(safety.PublicMessage)

// Result is the outcome of a routed command. Exactly the fields relevant
// to the command type are set.
type Result struct {
	Entry          *inventory.Entry  `json:"entry,omitempty"`
	Deleted        bool              `json:"deleted,omitempty"`
	Recipe         *recipe.Recipe    `json:"recipe,omitempty"`
	Reconciliation *reconcile.Result `json:"reconciliation,omitempty"`
}

// Handler executes commands. Router is the production implementation;
// front ends depend on this interface so tests can stub it.
type Handler interface {
	Handle(ctx context.Context, cmd Command) (Result, error)
}

// Router validates commands and dispatches them to the owning component.
type Router struct {
	ledger     *inventory.Ledger
	builder    *recipe.Builder
	reconciler *reconcile.Reconciler
	filter     *safety.Filter
	// usage may be nil; recipe metering is then skipped.
	usage    *metrics.Store
	validate *validator.Validate
	logger   *zap.Logger
}

// NewRouter wires a Router over the core components.
func NewRouter(
	ledger *inventory.Ledger,
	builder *recipe.Builder,
	reconciler *reconcile.Reconciler,
	filter *safety.Filter,
	usage *metrics.Store,
	logger *zap.Logger,
) *Router {
	return &Router{
		ledger:     ledger,
		builder:    builder,
		reconciler: reconciler,
		filter:     filter,
		usage:      usage,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Handle validates and executes a single command.
func (r *Router) Handle(ctx context.Context, cmd Command) (Result, error) {
	ctx, span := otel.Tracer("command").Start(ctx, fmt.Sprintf("command.%T", cmd))
	defer span.End()

	res, err := r.dispatch(ctx, cmd)
	if err != nil {
		span.SetStatus(codes.Error, "command failed")
		span.RecordError(err)
	}
	return res, err
}

func (r *Router) dispatch(ctx context.Context, cmd Command) (Result, error) {
	if err := r.validate.Struct(cmd); err != nil {
		r.logger.Debug("command failed validation", zap.Error(err))
		return Result{}, ErrValidation
	}

	switch c := cmd.(type) {
	case AddCommand:
		return r.handleAdd(ctx, c)
	case RemoveCommand:
		return r.handleRemove(ctx, c)
	case GenerateRecipeCommand:
		return r.handleGenerate(ctx, c)
	case ConfirmCommand:
		return r.handleConfirm(ctx, c)
	default:
		return Result{}, fmt.Errorf("unknown command type %T", cmd)
	}
}

// CheckText runs the content filter over free text before it reaches any
// other component.
func (r *Router) CheckText(text string) error {
	if v := r.filter.Evaluate(text); !v.Safe {
		return ErrUnsafeContent
	}
	return nil
}

func (r *Router) handleAdd(ctx context.Context, c AddCommand) (Result, error) {
	if err := r.CheckText(c.Name); err != nil {
		return Result{}, err
	}

	entry, err := r.ledger.Add(ctx, c.OwnerID, c.Name, c.Quantity, c.Unit)
	if err != nil {
		r.logger.Warn("add rejected", zap.String("owner_id", c.OwnerID), zap.Error(err))
		return Result{}, ErrValidation
	}
	return Result{Entry: &entry}, nil
}

func (r *Router) handleRemove(ctx context.Context, c RemoveCommand) (Result, error) {
	outcome, err := r.ledger.Reduce(ctx, c.OwnerID, c.Name, c.Quantity, c.Unit)
	if errors.Is(err, inventory.ErrNotFound) {
		// Removing something that is not there is a reported no-op.
		return Result{Deleted: false}, nil
	}
	if err != nil {
		r.logger.Warn("remove rejected", zap.String("owner_id", c.OwnerID), zap.Error(err))
		return Result{}, ErrValidation
	}

	if outcome.Deleted {
		return Result{Deleted: true}, nil
	}
	return Result{Entry: &outcome.Entry}, nil
}

func (r *Router) handleGenerate(ctx context.Context, c GenerateRecipeCommand) (Result, error) {
	rec, meta, err := r.builder.Generate(ctx, c.OwnerID, c.Intent)
	if err != nil {
		return Result{}, err
	}

	if r.usage != nil {
		if merr := r.usage.RecordMeta(ctx, meta); merr != nil {
			r.logger.Warn("failed to record usage metrics", zap.Error(merr))
		}
	}

	return Result{Recipe: &rec}, nil
}

func (r *Router) handleConfirm(ctx context.Context, c ConfirmCommand) (Result, error) {
	res, err := r.reconciler.Confirm(ctx, c.OwnerID, c.Recipe)
	if err != nil {
		return Result{}, err
	}
	return Result{Reconciliation: &res}, nil
}
