package backend

import (
	"context"
	"net/http"

	"taskboard/domain"
)

// SubscriptionService covers /subscriptions.
type SubscriptionService service

func (s *SubscriptionService) Current(ctx context.Context) (domain.Subscription, error) {
	return get[domain.Subscription](ctx, s.r, "/subscriptions/current", nil)
}

func (s *SubscriptionService) Create(ctx context.Context, in domain.SubscriptionRequest) (domain.Subscription, error) {
	return call[domain.Subscription](ctx, s.r, http.MethodPost, "/subscriptions", nil, in)
}

func (s *SubscriptionService) ChangePlan(ctx context.Context, in domain.SubscriptionRequest) (domain.Subscription, error) {
	return call[domain.Subscription](ctx, s.r, http.MethodPut, "/subscriptions/change-plan", nil, in)
}

func (s *SubscriptionService) Cancel(ctx context.Context, in domain.CancelRequest) (domain.Subscription, error) {
	return call[domain.Subscription](ctx, s.r, http.MethodPost, "/subscriptions/cancel", nil, in)
}

func (s *SubscriptionService) Reactivate(ctx context.Context) (domain.Subscription, error) {
	return call[domain.Subscription](ctx, s.r, http.MethodPost, "/subscriptions/reactivate", nil, nil)
}

func (s *SubscriptionService) Usage(ctx context.Context) (domain.SubscriptionUsage, error) {
	return get[domain.SubscriptionUsage](ctx, s.r, "/subscriptions/usage", nil)
}

// PlanService covers /plans.
type PlanService service

func (s *PlanService) List(ctx context.Context) ([]domain.Plan, error) {
	return get[[]domain.Plan](ctx, s.r, "/plans", nil)
}

func (s *PlanService) Get(ctx context.Context, planID int64) (domain.Plan, error) {
	return get[domain.Plan](ctx, s.r, pathf("/plans/%d", planID), nil)
}

func (s *PlanService) Popular(ctx context.Context) ([]domain.Plan, error) {
	return get[[]domain.Plan](ctx, s.r, "/plans/popular", nil)
}

// ReportService covers the admin /reports endpoints.
type ReportService service

func (s *ReportService) Dashboard(ctx context.Context) (domain.Report, error) {
	return get[domain.Report](ctx, s.r, "/reports/subscription/dashboard", nil)
}

// Growth reports subscription growth between two ISO dates.
func (s *ReportService) Growth(ctx context.Context, startDate, endDate string) (domain.Report, error) {
	return get[domain.Report](ctx, s.r, "/reports/subscription/growth", params("startDate", startDate, "endDate", endDate))
}
