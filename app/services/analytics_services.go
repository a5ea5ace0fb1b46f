package services

import (
	"context"
	"time"

	"github.com/shashiranjanraj/foodineye/app/models"
	"github.com/shashiranjanraj/foodineye/app/repositories"
	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/collection"
)

// DateLayout is the day format accepted by the analytics endpoint.
const DateLayout = "2006-01-02"

// AnalyticsService summarises orders.
type AnalyticsService struct {
	orders *repositories.OrderRepository
}

func NewAnalyticsService(orders *repositories.OrderRepository) *AnalyticsService {
	return &AnalyticsService{orders: orders}
}

// SaleReport aggregates the orders created on date (UTC). A non-empty
// storeID narrows it to one store. Canceled orders are counted but earn
// nothing.
func (s *AnalyticsService) SaleReport(ctx context.Context, date, storeID string) (*models.SaleReport, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, apperr.E(apperr.KindValidation, "The date must be YYYY-MM-DD.", err)
	}
	if storeID != "" {
		if _, err := repositories.ParseID(storeID); err != nil {
			return nil, err
		}
	}

	orders, err := s.orders.Between(ctx, day, day.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	if storeID != "" {
		orders = collection.Filter(orders, func(o models.Order) bool { return o.StoreID == storeID })
	}

	report := &models.SaleReport{Date: date, StoreID: storeID, ByFood: map[string]int{}}
	for _, o := range orders {
		report.Orders++
		if o.Status == models.OrderCanceled {
			report.Canceled++
			continue
		}
		report.Revenue += o.Total
		for _, item := range o.Items {
			report.ByFood[item.Name] += item.Count
		}
	}
	return report, nil
}
