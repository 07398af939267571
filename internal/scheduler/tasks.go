package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadDispatched = "leads.dispatched"

const TaskOwnershipAudit = "ownership.audit"

type LeadDispatchedPayload struct {
	LeadID               string `json:"leadId"`
	OrganizationID       string `json:"organizationId"`
	AssignedSiteID       string `json:"assignedSiteId"`
	TargetOrganizationID string `json:"targetOrganizationId"`
	Mechanism            string `json:"mechanism"`
}

func NewLeadDispatchedTask(payload LeadDispatchedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadDispatched, data), nil
}

func ParseLeadDispatchedPayload(task *asynq.Task) (LeadDispatchedPayload, error) {
	var payload LeadDispatchedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadDispatchedPayload{}, err
	}
	return payload, nil
}

// NewOwnershipAuditTask carries no payload; the audit always scans every lead.
func NewOwnershipAuditTask() *asynq.Task {
	return asynq.NewTask(TaskOwnershipAudit, nil)
}
