package service

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/spec-kit/service-orders/internal/domain"
	"github.com/spec-kit/service-orders/internal/repository"
	apperrors "github.com/spec-kit/service-orders/pkg/util/errorutil"
)

const (
	openBacklogThreshold = 5

	summaryInsufficientData = "Dados insuficientes para gerar uma análise. Cadastre ordens de serviço."
	summaryBacklogAlert     = "Alerta: %d ordens em aberto (%d%% do total). Priorize a equipe técnica."
	summaryEfficiencyAlert  = "Alerta de eficiência: mais da metade das ordens são corretivas. Reforce a manutenção preventiva."
	summaryStable           = "Operação estável. Fluxo de manutenção sob controle."
)

// OrderCounts is the dashboard view.
type OrderCounts struct {
	Open   int
	Closed int
	Total  int
}

// ReportService derives read-only views over the order store.
type ReportService struct {
	orders repository.OrderRepository
	cache  repository.ReportCache
	logger *zap.Logger
}

// NewReportService constructs the service. cache may be nil.
func NewReportService(orders repository.OrderRepository, cache repository.ReportCache, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{orders: orders, cache: cache, logger: logger}
}

// Counts returns open, closed and total orders.
func (s *ReportService) Counts(ctx context.Context) (OrderCounts, error) {
	stats, err := s.stats(ctx)
	if err != nil {
		return OrderCounts{}, err
	}
	return OrderCounts{Open: stats.Open, Closed: stats.Closed, Total: stats.Open + stats.Closed}, nil
}

// Summary returns the executive summary text for the current store.
func (s *ReportService) Summary(ctx context.Context) (string, error) {
	stats, err := s.stats(ctx)
	if err != nil {
		return "", err
	}
	return Summarize(stats), nil
}

// InvalidateCache drops cached statistics after a mutation.
func (s *ReportService) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx)
}

// Summarize evaluates the decision table top to bottom; the first matching branch wins.
func Summarize(stats domain.OrderStats) string {
	total := stats.Open + stats.Closed
	switch {
	case total == 0:
		return summaryInsufficientData
	case stats.Open > openBacklogThreshold:
		percent := int(math.Round(float64(stats.Open) / float64(total) * 100))
		return fmt.Sprintf(summaryBacklogAlert, stats.Open, percent)
	case stats.Corrective*2 > total:
		return summaryEfficiencyAlert
	default:
		return summaryStable
	}
}

func (s *ReportService) stats(ctx context.Context) (domain.OrderStats, error) {
	generation, cacheable := s.cacheGeneration(ctx)
	if cacheable {
		cached, ok, err := s.cache.GetStats(ctx, generation)
		if err != nil {
			s.logger.Warn("report cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	stats, err := s.orders.Stats(ctx)
	if err != nil {
		return domain.OrderStats{}, apperrors.NewStoreUnavailable(err)
	}

	if cacheable {
		if err := s.cache.SetStats(ctx, generation, stats); err != nil {
			s.logger.Warn("report cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// cacheGeneration must run before the store is read.
func (s *ReportService) cacheGeneration(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	generation, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.Warn("report cache generation read failed", zap.Error(err))
		return 0, false
	}
	return generation, true
}
