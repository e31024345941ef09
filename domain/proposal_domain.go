package domain

import (
	"time"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/google/uuid"
)

var (
	MessageSuccessCreateProposal = "proposal created successfully"
	MessageSuccessGetProposals   = "proposals retrieved successfully"
	MessageSuccessMarkViewed     = "proposal marked as viewed"
	MessageSuccessDeleteProposal = "proposal deleted successfully"

	MessageFailedCreateProposal = "failed to create proposal"
	MessageFailedGetProposals   = "failed to retrieve proposals"
	MessageFailedMarkViewed     = "failed to mark proposal as viewed"
	MessageFailedDeleteProposal = "failed to delete proposal"

	// Shown instead of contact actions to group members who are not the owner.
	MessageGroupContactNotice = "only the group owner can see the buyer's contact and answer this proposal"

	ErrProposalNotFound      = newError(KindNotFound, "proposal not found")
	ErrInvalidPrice          = newError(KindValidation, "price per sack must be greater than zero")
	ErrInvalidProposalQty    = newError(KindValidation, "quantity must be at least 1")
	ErrInvalidProposalTarget = newError(KindValidation, "exactly one of user_id or group_id must be set")
	ErrNotRepresentative     = newError(KindAuthorization, "only representatives can create proposals")
	ErrProposalForbidden     = newError(KindAuthorization, "not allowed to act on this proposal")
	ErrInvalidOrigin         = newError(KindValidation, "origin must be all, direct or group")
)

const (
	OriginAll    = "all"
	OriginDirect = "direct"
	OriginGroup  = "group"
)

// ProposalTarget is either ProducerTarget or GroupTarget.
type ProposalTarget interface {
	isProposalTarget()
}

type ProducerTarget struct{ UserID uuid.UUID }

type GroupTarget struct{ GroupID uuid.UUID }

func (ProducerTarget) isProposalTarget() {}
func (GroupTarget) isProposalTarget()    {}

// NewProposalTarget enforces that exactly one of the two ids is set.
func NewProposalTarget(userID, groupID string) (ProposalTarget, error) {
	switch {
	case userID != "" && groupID == "":
		id, err := uuid.Parse(userID)
		if err != nil {
			return nil, ErrInvalidProposalTarget
		}
		return ProducerTarget{UserID: id}, nil
	case groupID != "" && userID == "":
		id, err := uuid.Parse(groupID)
		if err != nil {
			return nil, ErrInvalidProposalTarget
		}
		return GroupTarget{GroupID: id}, nil
	default:
		return nil, ErrInvalidProposalTarget
	}
}

// TargetOf reads the stored id pair back into the sum type.
func TargetOf(p *entities.Proposal) ProposalTarget {
	if p.GroupID != nil {
		return GroupTarget{GroupID: *p.GroupID}
	}
	if p.UserID != nil {
		return ProducerTarget{UserID: *p.UserID}
	}
	return nil
}

// CanSeeContact decides whether actingUserID may see the buyer's phone and
// email and act on the proposal. group is the resolved target group, nil when
// the proposal is direct or the group no longer exists.
func CanSeeContact(p *entities.Proposal, group *entities.Group, actingUserID uuid.UUID) bool {
	switch t := TargetOf(p).(type) {
	case ProducerTarget:
		return t.UserID == actingUserID
	case GroupTarget:
		return group != nil && group.ID == t.GroupID && group.CreatedBy == actingUserID
	default:
		return false
	}
}

type (
	CreateProposalRequest struct {
		PricePerSack float64 `json:"price_per_sack" validate:"gt=0"`
		Quantity     int     `json:"quantity" validate:"min=1"`
		UserID       string  `json:"user_id" validate:"omitempty,uuid"`
		GroupID      string  `json:"group_id" validate:"omitempty,uuid"`
		HarvestID    string  `json:"harvest_id" validate:"omitempty,uuid"`
		Observations string  `json:"observations" validate:"max=1000"`
	}

	Proposal struct {
		ID            string        `json:"id"`
		BuyerID       string        `json:"buyer_id"`
		UserID        string        `json:"user_id,omitempty"`
		GroupID       string        `json:"group_id,omitempty"`
		HarvestID     string        `json:"harvest_id,omitempty"`
		Origin        string        `json:"origin"`
		PricePerSack  float64       `json:"price_per_sack"`
		Quantity      int           `json:"quantity"`
		NameBuyer     string        `json:"name_buyer"`
		PhoneBuyer    string        `json:"phone_buyer,omitempty"`
		EmailBuyer    string        `json:"email_buyer,omitempty"`
		Viewed        bool          `json:"viewed"`
		Observations  string        `json:"observations,omitempty"`
		CreatedAt     time.Time     `json:"created_at"`
		Group         *GroupSummary `json:"group"`
		CanSeeContact bool          `json:"can_see_contact"`
		ContactNotice string        `json:"contact_notice,omitempty"`
	}

	ReceivedProposal struct {
		Proposal
		Buyer *PublicUser `json:"buyer"`
	}

	SentProposal struct {
		Proposal
		Producer *PublicUser `json:"producer"`
	}

	UnreadCounts struct {
		Total  int `json:"total"`
		Direct int `json:"direct"`
		Group  int `json:"group"`
	}
)

// ToProposal renders p; contact fields are only filled when showContact is set.
func ToProposal(p *entities.Proposal, group *entities.Group, showContact bool) Proposal {
	out := Proposal{
		ID:            p.ID.String(),
		BuyerID:       p.BuyerID.String(),
		Origin:        OriginDirect,
		PricePerSack:  p.PricePerSack,
		Quantity:      p.Quantity,
		NameBuyer:     p.NameBuyer,
		Viewed:        p.Viewed,
		Observations:  p.Observations,
		CreatedAt:     p.CreatedAt,
		Group:         ToGroupSummary(group),
		CanSeeContact: showContact,
	}
	if p.UserID != nil {
		out.UserID = p.UserID.String()
	}
	if p.GroupID != nil {
		out.GroupID = p.GroupID.String()
		out.Origin = OriginGroup
	}
	if p.HarvestID != nil {
		out.HarvestID = p.HarvestID.String()
	}
	if showContact {
		out.PhoneBuyer = p.PhoneBuyer
		out.EmailBuyer = p.EmailBuyer
	} else if out.Origin == OriginGroup {
		out.ContactNotice = MessageGroupContactNotice
	}
	return out
}

// ToReceivedProposal renders p for actingUserID. Viewers who may not see the
// buyer's contact get the buyer reduced to id, name and role.
func ToReceivedProposal(p *entities.Proposal, group *entities.Group, buyer *entities.User, actingUserID uuid.UUID) ReceivedProposal {
	showContact := CanSeeContact(p, group, actingUserID)
	out := ReceivedProposal{Proposal: ToProposal(p, group, showContact)}
	if buyer == nil {
		return out
	}
	if showContact {
		out.Buyer = ToPublicUserPtr(buyer)
		return out
	}
	out.Buyer = &PublicUser{
		ID:   buyer.ID.String(),
		Name: buyer.Name,
		Role: buyer.Role,
	}
	return out
}
