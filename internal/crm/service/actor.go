package service

import (
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	userentity "github.com/Kishor404/VST-Maarketing-CRM-System/internal/user/entity"
)

// Actor is the authenticated caller as seen by the business layer,
// extracted from JWT claims by the handler.
type Actor struct {
	ID           string
	Role         string
	Region       string
	Phone        string
	IsIndustrial bool
}

func (a Actor) IsAdmin() bool {
	return a.Role == userentity.RoleAdmin
}

func (a Actor) IsWorker() bool {
	return a.Role == userentity.RoleWorker
}

func (a Actor) IsCustomer() bool {
	return a.Role == userentity.RoleCustomer
}

// CanViewCard reports whether the actor may read a card: admins see all,
// workers see their region, customers see their own.
func (a Actor) CanViewCard(card *entity.Card) bool {
	switch {
	case a.IsAdmin():
		return true
	case a.IsWorker():
		return card.Region == a.Region
	default:
		return card.CustomerID == a.ID
	}
}

// CanActOnService reports whether the actor may drive a service forward:
// admins always, the assigned worker, or the requesting customer.
func (a Actor) CanActOnService(svc *entity.Service) bool {
	if a.IsAdmin() {
		return true
	}
	if a.IsWorker() && svc.AssignedToID != nil && *svc.AssignedToID == a.ID {
		return true
	}
	return svc.RequestedByID == a.ID
}

// CanHandleJobCard reports whether the actor works on the card day to
// day (photo uploads): admins, or the staff handling the card.
func (a Actor) CanHandleJobCard(jc *entity.JobCard) bool {
	if a.IsAdmin() {
		return true
	}
	return a.IsWorker() && jc.StaffID != nil && *jc.StaffID == a.ID
}
