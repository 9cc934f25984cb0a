package report

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/frahmantamala/bodega-inventory/internal"
	"github.com/frahmantamala/bodega-inventory/internal/product"
)

type Repository interface {
	CountProducts(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
	CountOutOfStock(ctx context.Context) (int64, error)
	CountCategories(ctx context.Context) (int64, error)
	UsersByRole(ctx context.Context) ([]RoleCount, error)
	InventoryRows(ctx context.Context) ([]InventoryRow, error)
}

type Service struct {
	repo    Repository
	timeout time.Duration
	logger  *slog.Logger
}

func NewService(repo Repository, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		timeout: timeout,
		logger:  logger,
	}
}

// General runs the independent counters concurrently.
func (s *Service) General(ctx context.Context) (*GeneralStats, error) {
	ctx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	var stats GeneralStats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.TotalProducts, err = s.repo.CountProducts(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.LowStock, err = s.repo.CountLowStock(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.OutOfStock, err = s.repo.CountOutOfStock(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Categories, err = s.repo.CountCategories(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("general report failed", "error", err)
		return nil, internal.NewInternalError("failed to build report", err)
	}
	return &stats, nil
}

func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	general, err := s.General(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	counts, err := s.repo.UsersByRole(ctx)
	if err != nil {
		s.logger.Error("dashboard user count failed", "error", err)
		return nil, internal.NewInternalError("failed to build dashboard", err)
	}

	out := &DashboardStats{GeneralStats: *general, UsersByRole: map[string]int64{}}
	for _, c := range counts {
		out.UsersByRole[c.Role] = c.Total
		out.TotalUsers += c.Total
	}
	return out, nil
}

var exportHeader = []string{"id", "name", "category", "quantity", "minimum_stock", "status", "location", "updated_at"}

// WriteInventoryCSV writes the full product list as CSV.
func (s *Service) WriteInventoryCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.repo.InventoryRows(ctx)
	if err != nil {
		s.logger.Error("inventory export failed", "error", err)
		return internal.NewInternalError("failed to export inventory", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			strconv.FormatInt(row.ID, 10),
			textCell(row.Name),
			textCell(deref(row.Category)),
			strconv.Itoa(row.Quantity),
			strconv.Itoa(row.MinimumStock),
			string(product.Stock(row.Quantity, row.MinimumStock)),
			textCell(deref(row.Location)),
			row.UpdatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// textCell keeps spreadsheets from evaluating user text as a formula.
func textCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
