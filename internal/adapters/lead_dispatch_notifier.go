package adapters

import (
	"context"

	"leadgate/internal/leads/service"
	"leadgate/internal/scheduler"
)

// LeadDispatchNotifier adapts the scheduler client for the ingestion
// pipeline. Dispatch notices become asynq tasks consumed by the worker.
type LeadDispatchNotifier struct {
	enqueuer scheduler.DispatchEnqueuer
}

func NewLeadDispatchNotifier(enqueuer scheduler.DispatchEnqueuer) *LeadDispatchNotifier {
	return &LeadDispatchNotifier{enqueuer: enqueuer}
}

func (n *LeadDispatchNotifier) NotifyLeadDispatched(ctx context.Context, notice service.DispatchNotice) error {
	if n == nil || n.enqueuer == nil {
		return nil
	}
	return n.enqueuer.EnqueueLeadDispatched(ctx, scheduler.LeadDispatchedPayload{
		LeadID:               notice.LeadID.String(),
		OrganizationID:       notice.OrganizationID.String(),
		AssignedSiteID:       notice.AssignedSiteID.String(),
		TargetOrganizationID: notice.TargetOrganizationID.String(),
		Mechanism:            notice.Mechanism,
	})
}

var _ service.Notifier = (*LeadDispatchNotifier)(nil)
