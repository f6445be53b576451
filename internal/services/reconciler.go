package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"katalog/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Default values for products created from an upsert row.
const (
	defaultDescription = ""
	defaultPrice       = 0.0
	defaultCost        = 0.0
)

var defaultCategory = models.CategoryOther.Value()

// Catalog is the part of ProductService the Reconciler drives.
type Catalog interface {
	FindByCode(ctx context.Context, code string, includeInactive bool) (*models.Product, error)
	ListProducts(ctx context.Context, includeInactive bool) ([]models.Product, error)
	CreateProduct(ctx context.Context, data map[string]any) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uint, data map[string]any) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) (bool, error)
}

// ReportPublisher receives finished reconciliation reports.
type ReportPublisher interface {
	PublishReport(ctx context.Context, report *models.ReconciliationReport) error
}

// RunObserver is told about every reconciliation attempt. report is nil when
// the batch was rejected before any work.
type RunObserver interface {
	ObserveRun(mode models.ReconcileMode, report *models.ReconciliationReport, err error)
}

// Reconciler applies uploaded batches to the catalog. Batches run one at a
// time and each row is written in its own transaction; a failed row never
// undoes the rows before it.
type Reconciler struct {
	catalog   Catalog
	publisher ReportPublisher
	observer  RunObserver
	logger    *zap.Logger
	now       func() time.Time
	mu        sync.Mutex
}

// NewReconciler creates a Reconciler. publisher may be nil.
func NewReconciler(catalog Catalog, publisher ReportPublisher, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		catalog:   catalog,
		publisher: publisher,
		logger:    logger.Named("reconciler"),
		now:       time.Now,
	}
}

// WithObserver sets the observer notified after each run and returns r.
func (r *Reconciler) WithObserver(o RunObserver) *Reconciler {
	r.observer = o
	return r
}

// Reconcile dispatches batch to the operation for mode.
func (r *Reconciler) Reconcile(ctx context.Context, mode models.ReconcileMode, batch *models.Batch) (*models.ReconciliationReport, error) {
	switch mode {
	case models.ModeDeleteByCode:
		return r.DeleteByCode(ctx, batch)
	case models.ModeUpsert:
		return r.Upsert(ctx, batch)
	case models.ModeRecount:
		return r.Recount(ctx, batch)
	default:
		return nil, fmt.Errorf("unknown reconcile mode %q", mode)
	}
}

// DeleteByCode soft-deletes the active product named by each row's code.
// Codes with no active product are reported in NotFoundCodes.
func (r *Reconciler) DeleteByCode(ctx context.Context, batch *models.Batch) (*models.ReconciliationReport, error) {
	return r.run(ctx, models.ModeDeleteByCode, batch, []string{models.FieldCode}, func(report *models.ReconciliationReport) error {
		for _, row := range batch.Rows {
			code, ok := rowCode(row)
			if !ok {
				report.Record(models.RowOutcome{Line: row.Line, Action: models.ActionSkipped})
				continue
			}
			product, err := r.catalog.FindByCode(ctx, code, false)
			if err != nil {
				return err
			}
			if product == nil {
				report.Record(models.RowOutcome{Line: row.Line, Code: code, Action: models.ActionNotFound})
				continue
			}
			deleted, err := r.catalog.DeleteProduct(ctx, product.ID)
			if err != nil {
				return err
			}
			if !deleted {
				report.Record(models.RowOutcome{Line: row.Line, Code: code, Action: models.ActionNotFound})
				continue
			}
			report.Record(models.RowOutcome{Line: row.Line, Code: code, Action: models.ActionDeleted})
		}
		return nil
	})
}

// Upsert updates the product matching each row's code, whatever its state,
// and creates products for codes not yet in the catalog. Rows rejected by
// validation or code conflicts are reported and skipped.
func (r *Reconciler) Upsert(ctx context.Context, batch *models.Batch) (*models.ReconciliationReport, error) {
	return r.run(ctx, models.ModeUpsert, batch, []string{models.FieldCode, models.FieldName}, func(report *models.ReconciliationReport) error {
		for _, row := range batch.Rows {
			outcome, err := r.upsertRow(ctx, row)
			if err != nil {
				if !models.IsRowError(err) {
					return err
				}
				outcome = models.RowOutcome{Line: row.Line, Code: outcome.Code, Action: models.ActionFailed, Err: err}
				r.logger.Warn("row rejected",
					zap.Int("line", row.Line),
					zap.String("code", outcome.Code),
					zap.Error(err),
				)
			}
			report.Record(outcome)
		}
		return nil
	})
}

func (r *Reconciler) upsertRow(ctx context.Context, row models.BatchRow) (models.RowOutcome, error) {
	code, ok := rowCode(row)
	if !ok {
		return models.RowOutcome{Line: row.Line, Action: models.ActionSkipped}, nil
	}
	outcome := models.RowOutcome{Line: row.Line, Code: code}

	existing, err := r.catalog.FindByCode(ctx, code, true)
	if err != nil {
		return outcome, err
	}

	data := rowData(row)
	data[models.FieldCode] = code

	if existing != nil {
		if _, ok := data[models.FieldIsActive]; !ok {
			data[models.FieldIsActive] = true
		}
		updated, err := r.catalog.UpdateProduct(ctx, existing.ID, data)
		if err != nil {
			return outcome, err
		}
		if updated == nil {
			return outcome, fmt.Errorf("product %d vanished during upsert: %w", existing.ID, models.ErrProductNotFound)
		}
		outcome.Action = models.ActionUpdated
		return outcome, nil
	}

	setDefault(data, models.FieldName, "")
	setDefault(data, models.FieldDescription, defaultDescription)
	setDefault(data, models.FieldPrice, defaultPrice)
	setDefault(data, models.FieldCost, defaultCost)
	setDefault(data, models.FieldCategory, defaultCategory)
	setDefault(data, models.FieldIsActive, true)
	if _, err := r.catalog.CreateProduct(ctx, data); err != nil {
		return outcome, err
	}
	outcome.Action = models.ActionCreated
	return outcome, nil
}

// Recount treats the batch's codes as the complete physical count: products
// listed are reactivated, coded products missing from the file are
// deactivated. Running the same file twice changes nothing the second time.
func (r *Reconciler) Recount(ctx context.Context, batch *models.Batch) (*models.ReconciliationReport, error) {
	return r.run(ctx, models.ModeRecount, batch, []string{models.FieldCode}, func(report *models.ReconciliationReport) error {
		present := make(map[string]struct{}, len(batch.Rows))
		for _, row := range batch.Rows {
			code, ok := rowCode(row)
			if !ok {
				report.Record(models.RowOutcome{Line: row.Line, Action: models.ActionSkipped})
				continue
			}
			present[code] = struct{}{}
		}

		products, err := r.catalog.ListProducts(ctx, true)
		if err != nil {
			return err
		}
		for _, p := range products {
			if p.Code == "" {
				continue
			}
			_, listed := present[p.Code]
			var err error
			switch {
			case listed && !p.IsActive:
				err = r.reactivate(ctx, p)
				if err == nil {
					report.Record(models.RowOutcome{Code: p.Code, Action: models.ActionActivated})
				}
			case !listed && p.IsActive:
				var deleted bool
				deleted, err = r.catalog.DeleteProduct(ctx, p.ID)
				switch {
				case err != nil:
				case deleted:
					report.Record(models.RowOutcome{Code: p.Code, Action: models.ActionDeactivated})
				default:
					report.Record(models.RowOutcome{Code: p.Code, Action: models.ActionNotFound})
				}
			}
			if err != nil {
				if !models.IsRowError(err) {
					return err
				}
				report.Record(models.RowOutcome{Code: p.Code, Action: models.ActionFailed, Err: err})
			}
		}
		return nil
	})
}

func (r *Reconciler) reactivate(ctx context.Context, p models.Product) error {
	updated, err := r.catalog.UpdateProduct(ctx, p.ID, map[string]any{models.FieldIsActive: true})
	if err != nil {
		return err
	}
	if updated == nil {
		return fmt.Errorf("reactivate product %d: %w", p.ID, models.ErrProductNotFound)
	}
	return nil
}

// run checks the header, serializes the batch and finishes the report. When
// apply fails the partial report is returned along with the error.
func (r *Reconciler) run(
	ctx context.Context,
	mode models.ReconcileMode,
	batch *models.Batch,
	required []string,
	apply func(report *models.ReconciliationReport) error,
) (report *models.ReconciliationReport, err error) {
	if r.observer != nil {
		defer func() { r.observer.ObserveRun(mode, report, err) }()
	}
	if batch == nil {
		return nil, errors.New("reconcile: nil batch")
	}
	if missing := batch.MissingColumns(required...); len(missing) > 0 {
		return nil, &models.MissingFieldError{Fields: missing}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	report = &models.ReconciliationReport{
		RunID:         uuid.NewString(),
		Mode:          mode,
		Source:        batch.Source,
		StartedAt:     r.now(),
		NotFoundCodes: []string{},
		Failures:      []models.RowFailure{},
		Outcomes:      []models.RowOutcome{},
	}
	logger := r.logger.With(
		zap.String("run_id", report.RunID),
		zap.String("mode", string(mode)),
		zap.String("source", batch.Source),
	)
	logger.Info("reconciliation started", zap.Int("rows", len(batch.Rows)))

	err = apply(report)
	report.FinishedAt = r.now()
	if err != nil {
		logger.Error("reconciliation aborted", zap.Int("outcomes", len(report.Outcomes)), zap.Error(err))
		return report, fmt.Errorf("reconcile %s: %w", mode, err)
	}

	logger.Info("reconciliation finished",
		zap.Int("added", report.Added),
		zap.Int("updated", report.Updated),
		zap.Int("deleted", report.Deleted),
		zap.Int("activated", report.Activated),
		zap.Int("deactivated", report.Deactivated),
		zap.Int("skipped", report.Skipped),
		zap.Strings("not_found", report.NotFoundCodes),
		zap.Strings("failed", report.FailedCodes()),
		zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)),
	)
	if r.publisher != nil {
		if err := r.publisher.PublishReport(ctx, report); err != nil {
			logger.Warn("failed to publish reconciliation report", zap.Error(err))
		}
	}
	return report, nil
}

// rowCode returns the row's code as text; blank codes are never matched.
func rowCode(row models.BatchRow) (string, bool) {
	v, ok := row.Value(models.FieldCode)
	if !ok {
		return "", false
	}
	code := TextValue(v)
	return code, code != ""
}

// rowData copies the present, non-blank cells of row. Numeric columns that
// fail to coerce become 0.
func rowData(row models.BatchRow) map[string]any {
	data := make(map[string]any, len(row.Cells))
	for column := range row.Cells {
		v, ok := row.Value(column)
		if !ok {
			continue
		}
		switch column {
		case models.FieldPrice, models.FieldCost:
			data[column] = NumberOrZero(v)
		default:
			data[column] = v
		}
	}
	return data
}

func setDefault(data map[string]any, key string, value any) {
	if _, ok := data[key]; !ok {
		data[key] = value
	}
}
